// Package tasks is a task manager built on an entity registry: tasks are
// created with status New and queried by status or priority.
package tasks

import (
	"fmt"
	"log/slog"

	"github.com/whiteelite/registry/internal/domain/entities"
	domainrepos "github.com/whiteelite/registry/internal/domain/repositories"
	shared "github.com/whiteelite/registry/pkg/shared/domain/entities"
)

type Manager struct {
	tasks  domainrepos.Registry[entities.Task]
	logger *slog.Logger
}

func NewManager(tasks domainrepos.Registry[entities.Task], logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{tasks: tasks, logger: logger}
}

func (m *Manager) AddTask(name, description string, priority entities.Priority) (shared.ID, error) {
	id, err := m.tasks.Create(entities.Task{
		Name:        name,
		Description: description,
		Priority:    priority,
		Status:      entities.StatusNew,
	})
	if err != nil {
		return 0, fmt.Errorf("adding task %q: %w", name, err)
	}
	m.logger.Info("task added", "id", id, "name", name, "priority", priority)
	return id, nil
}

func (m *Manager) DeleteTask(id shared.ID) error {
	if err := m.tasks.Delete(id); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	m.logger.Info("task deleted", "id", id)
	return nil
}

// UpdateTaskStatus sets the status of a task. Any status string is accepted;
// there are no transition rules.
func (m *Manager) UpdateTaskStatus(id shared.ID, status entities.Status) error {
	if err := m.tasks.UpdateField(id, entities.TaskFieldStatus, status); err != nil {
		return fmt.Errorf("updating task status: %w", err)
	}
	m.logger.Info("task status updated", "id", id, "status", status)
	return nil
}

func (m *Manager) TasksByStatus(status entities.Status) []entities.Task {
	return m.tasks.FilterBy(domainrepos.FieldEquals[entities.Task](entities.TaskFieldStatus, status))
}

func (m *Manager) TasksByPriority(priority entities.Priority) []entities.Task {
	return m.tasks.FilterBy(domainrepos.FieldEquals[entities.Task](entities.TaskFieldPriority, priority))
}

// TasksWhere returns the tasks with the given status and any of the given
// priorities. An empty status or no priorities leaves that side open.
func (m *Manager) TasksWhere(status entities.Status, priorities ...entities.Priority) []entities.Task {
	var preds []domainrepos.Predicate[entities.Task]
	if status != "" {
		preds = append(preds, domainrepos.FieldEquals[entities.Task](entities.TaskFieldStatus, status))
	}
	if len(priorities) > 0 {
		byPriority := make([]domainrepos.Predicate[entities.Task], 0, len(priorities))
		for _, p := range priorities {
			byPriority = append(byPriority, domainrepos.FieldEquals[entities.Task](entities.TaskFieldPriority, p))
		}
		preds = append(preds, domainrepos.Any(byPriority...))
	}
	return m.tasks.FilterBy(domainrepos.All(preds...))
}

// OpenTasks returns every task that is not Done.
func (m *Manager) OpenTasks() []entities.Task {
	return m.tasks.FilterBy(domainrepos.Not(domainrepos.FieldEquals[entities.Task](entities.TaskFieldStatus, entities.StatusDone)))
}

func (m *Manager) Task(id shared.ID) (entities.Task, bool) {
	return m.tasks.FindByID(id)
}

// Tasks returns every task in the order it was added.
func (m *Manager) Tasks() []entities.Task {
	return m.tasks.List()
}
