// Package fixtures loads seed data for the task manager and the bank from
// YAML, and carries the built-in demo data set.
package fixtures

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/whiteelite/registry/internal/application/bank"
	"github.com/whiteelite/registry/internal/application/tasks"
	"github.com/whiteelite/registry/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

type Fixtures struct {
	Bank     BankFixture      `yaml:"bank"`
	Accounts []AccountFixture `yaml:"accounts"`
	Tasks    []TaskFixture    `yaml:"tasks"`
}

type BankFixture struct {
	Name string `yaml:"name"`
}

type AccountFixture struct {
	Number  int64  `yaml:"number"`
	Holder  string `yaml:"holder"`
	Balance string `yaml:"balance"` // decimal string, empty means zero
}

type TaskFixture struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Priority    string `yaml:"priority"`
	// Status other than New is applied after the task is added.
	Status string `yaml:"status"`
}

// Default returns the demo data set: one bank with two accounts and three
// open tasks.
func Default() *Fixtures {
	return &Fixtures{
		Bank: BankFixture{Name: "XYZ Bank"},
		Accounts: []AccountFixture{
			{Number: 1001, Holder: "John Doe", Balance: "5000"},
			{Number: 1002, Holder: "Alice Smith"},
		},
		Tasks: []TaskFixture{
			{Name: "Implement user authentication", Description: "Implement login and signup functionality", Priority: "High"},
			{Name: "Design database schema", Description: "Design tables and relationships", Priority: "Medium"},
			{Name: "Fix UI styling issues", Description: "Apply CSS fixes to elements", Priority: "Low"},
		},
	}
}

func Load(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	return &f, nil
}

// SeedTasks adds every task fixture to m in order.
func SeedTasks(m *tasks.Manager, f *Fixtures) error {
	for _, tf := range f.Tasks {
		id, err := m.AddTask(tf.Name, tf.Description, entities.Priority(tf.Priority))
		if err != nil {
			return err
		}
		if tf.Status != "" && entities.Status(tf.Status) != entities.StatusNew {
			if err := m.UpdateTaskStatus(id, entities.Status(tf.Status)); err != nil {
				return err
			}
		}
	}
	return nil
}

// SeedBank opens every account fixture in b in order.
func SeedBank(b *bank.Bank, f *Fixtures) error {
	for _, af := range f.Accounts {
		opening := decimal.Zero
		if af.Balance != "" {
			d, err := decimal.NewFromString(af.Balance)
			if err != nil {
				return fmt.Errorf("account %d: invalid balance %q: %w", af.Number, af.Balance, err)
			}
			opening = d
		}
		if _, err := b.CreateAccount(entities.AccountNumber(af.Number), entities.OwnerName(af.Holder), opening); err != nil {
			return err
		}
	}
	return nil
}
