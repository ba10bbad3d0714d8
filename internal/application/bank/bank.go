// Package bank keeps customer accounts in an entity registry and applies
// deposits and withdrawals to them. Accounts are addressed by their account
// number; registry ids stay internal.
package bank

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/whiteelite/registry/internal/domain/entities"
	domainrepos "github.com/whiteelite/registry/internal/domain/repositories"
	shared "github.com/whiteelite/registry/pkg/shared/domain/entities"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

type Config struct {
	Name string
	// Strict makes operations on unknown account numbers fail with
	// shared.ErrNotFound instead of being ignored.
	Strict bool
	Logger *slog.Logger
}

type Bank struct {
	name     string
	strict   bool
	logger   *slog.Logger
	accounts domainrepos.Registry[entities.Account]

	// serializes CreateAccount so the duplicate check and the insert
	// happen together.
	createMu sync.Mutex
}

func New(cfg Config, accounts domainrepos.Registry[entities.Account]) *Bank {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bank{
		name:     cfg.Name,
		strict:   cfg.Strict,
		logger:   logger.With("bank", cfg.Name),
		accounts: accounts,
	}
}

func (b *Bank) Name() string { return b.name }

// CreateAccount opens an account with an opening balance. Account numbers
// are unique within the bank.
func (b *Bank) CreateAccount(number entities.AccountNumber, holder entities.OwnerName, opening decimal.Decimal) (shared.ID, error) {
	b.createMu.Lock()
	defer b.createMu.Unlock()

	if _, ok := b.find(number); ok {
		return 0, fmt.Errorf("%w: account %d already exists", shared.ErrInvalidArgument, number)
	}

	id, err := b.accounts.Create(entities.Account{Number: number, Holder: holder, Balance: opening})
	if err != nil {
		return 0, fmt.Errorf("creating account %d: %w", number, err)
	}
	b.logger.Info("account created", "account", number, "holder", holder, "balance", opening.StringFixed(2))
	return id, nil
}

func (b *Bank) Deposit(number entities.AccountNumber, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: deposit amount must be positive", shared.ErrInvalidArgument)
	}

	err := b.apply(number, "deposit", func(a *entities.Account) error {
		a.Balance = a.Balance.Add(amount)
		return nil
	})
	if err != nil {
		return err
	}
	b.logger.Info("deposited", "account", number, "amount", amount.StringFixed(2))
	return nil
}

// Withdraw debits amount from the account. The balance never goes negative:
// a withdrawal larger than the balance fails with ErrInsufficientFunds and
// leaves the account unchanged.
func (b *Bank) Withdraw(number entities.AccountNumber, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: withdrawal amount must be positive", shared.ErrInvalidArgument)
	}

	err := b.apply(number, "withdraw", func(a *entities.Account) error {
		if a.Balance.LessThan(amount) {
			return fmt.Errorf("%w: account %d has %s, requested %s",
				ErrInsufficientFunds, number, a.Balance.StringFixed(2), amount.StringFixed(2))
		}
		a.Balance = a.Balance.Sub(amount)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			b.logger.Warn("withdrawal refused", "account", number, "amount", amount.StringFixed(2))
		}
		return err
	}
	b.logger.Info("withdrawn", "account", number, "amount", amount.StringFixed(2))
	return nil
}

func (b *Bank) Balance(number entities.AccountNumber) (decimal.Decimal, bool) {
	acc, ok := b.find(number)
	if !ok {
		return decimal.Zero, false
	}
	return acc.Balance, true
}

func (b *Bank) Account(number entities.AccountNumber) (entities.Account, bool) {
	return b.find(number)
}

// ReportLine is one account in a Report.
type ReportLine struct {
	Number  entities.AccountNumber `json:"number"`
	Holder  entities.OwnerName     `json:"holder"`
	Balance decimal.Decimal        `json:"balance"`
}

type Report struct {
	BankName string          `json:"bank"`
	Lines    []ReportLine    `json:"accounts"`
	Total    decimal.Decimal `json:"total"`
}

// Report lists every account in opening order.
func (b *Bank) Report() Report {
	accounts := b.accounts.List()

	r := Report{
		BankName: b.name,
		Lines:    make([]ReportLine, 0, len(accounts)),
		Total:    decimal.Zero,
	}
	for _, a := range accounts {
		r.Lines = append(r.Lines, ReportLine{Number: a.Number, Holder: a.Holder, Balance: a.Balance})
		r.Total = r.Total.Add(a.Balance)
	}
	return r
}

func (b *Bank) find(number entities.AccountNumber) (entities.Account, bool) {
	found := b.accounts.FilterBy(domainrepos.FieldEquals[entities.Account](entities.AccountFieldNumber, number))
	if len(found) == 0 {
		return entities.Account{}, false
	}
	return found[0], true
}

func (b *Bank) apply(number entities.AccountNumber, op string, mutate func(*entities.Account) error) error {
	acc, ok := b.find(number)
	if !ok {
		b.logger.Debug("unknown account", "account", number, "op", op)
		if b.strict {
			return fmt.Errorf("%s account %d: %w", op, number, shared.ErrNotFound)
		}
		return nil
	}
	if err := b.accounts.Update(acc.ID, mutate); err != nil {
		return fmt.Errorf("%s account %d: %w", op, number, err)
	}
	return nil
}
