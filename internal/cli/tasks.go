package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/whiteelite/registry/internal/application/tasks"
	"github.com/whiteelite/registry/internal/ctxlog"
	"github.com/whiteelite/registry/internal/domain/entities"
	"github.com/whiteelite/registry/internal/infrastructure/fixtures"
	"github.com/whiteelite/registry/internal/infrastructure/memory"
)

type tasksOptions struct {
	seed       string
	status     string
	priorities []string
}

func (a *app) newTasksCmd() *cobra.Command {
	var opts tasksOptions

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Run the task manager scenario",
		Long: `Seed the task manager, move task 1 to "In Progress", delete task 2 and print
the resulting views. --status and --priority replace the default views with
one view of the tasks matching both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTasks(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.seed, "seed", "", "fixtures file (defaults to the built-in demo data)")
	cmd.Flags().StringVar(&opts.status, "status", "", `only show tasks with this status (New, "In Progress", Done)`)
	cmd.Flags().StringSliceVar(&opts.priorities, "priority", nil, "only show tasks with one of these priorities (High, Medium, Low)")
	return cmd
}

func (a *app) runTasks(cmd *cobra.Command, opts tasksOptions) error {
	ctx := cmd.Context()
	logger := ctxlog.FromContext(ctx)

	f, err := loadFixtures(opts.seed)
	if err != nil {
		return err
	}

	regOpts, closeSink, err := a.registryOptions(ctx)
	if err != nil {
		return err
	}
	defer closeSink()

	m := tasks.NewManager(memory.New[entities.Task](regOpts...), logger)
	if err := fixtures.SeedTasks(m, f); err != nil {
		return fmt.Errorf("seeding tasks: %w", err)
	}

	if err := m.UpdateTaskStatus(1, entities.StatusInProgress); err != nil {
		return err
	}
	if err := m.DeleteTask(2); err != nil {
		return err
	}

	views := taskViews(m, opts)
	if a.cfg.Output == "json" {
		return writeJSON(cmd.OutOrStdout(), views)
	}
	return renderTaskViews(cmd.OutOrStdout(), views)
}

func taskViews(m *tasks.Manager, opts tasksOptions) []taskView {
	if opts.status != "" || len(opts.priorities) > 0 {
		priorities := make([]entities.Priority, 0, len(opts.priorities))
		for _, p := range opts.priorities {
			priorities = append(priorities, entities.Priority(p))
		}
		return []taskView{{
			Title: filterTitle(opts),
			Tasks: m.TasksWhere(entities.Status(opts.status), priorities...),
		}}
	}

	return []taskView{
		{Title: "New tasks", Tasks: m.TasksByStatus(entities.StatusNew)},
		{Title: "In progress tasks", Tasks: m.TasksByStatus(entities.StatusInProgress)},
		{Title: "Open tasks", Tasks: m.OpenTasks()},
		{Title: "High priority tasks", Tasks: m.TasksByPriority(entities.PriorityHigh)},
		{Title: "Medium priority tasks", Tasks: m.TasksByPriority(entities.PriorityMedium)},
		{Title: "All tasks", Tasks: m.Tasks()},
	}
}

func filterTitle(opts tasksOptions) string {
	var parts []string
	if opts.status != "" {
		parts = append(parts, "status "+opts.status)
	}
	if len(opts.priorities) > 0 {
		parts = append(parts, "priority "+strings.Join(opts.priorities, " or "))
	}
	return "Tasks with " + strings.Join(parts, " and ")
}

func loadFixtures(path string) (*fixtures.Fixtures, error) {
	if path == "" {
		return fixtures.Default(), nil
	}
	return fixtures.Load(path)
}
