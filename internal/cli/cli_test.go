package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whiteelite/registry/internal/application/bank"
	"github.com/whiteelite/registry/internal/config"
	"github.com/whiteelite/registry/internal/domain/entities"
	domainrepos "github.com/whiteelite/registry/internal/domain/repositories"
	"github.com/whiteelite/registry/internal/infrastructure/messaging/kafka/repositories/mapper"
	"github.com/whiteelite/registry/internal/infrastructure/messaging/kafka/repositories/models"
	shared "github.com/whiteelite/registry/pkg/shared/domain/entities"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("REGISTRY_KAFKA_BROKERS", "")

	cmd := NewRootCmd("1.2.3", "abc123", "2026-01-01")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func taskIDs(tasks []entities.Task) []shared.ID {
	ids := make([]shared.ID, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	return ids
}

func TestTasks_DefaultViews(t *testing.T) {
	out, _, err := run(t, "tasks", "-o", "json")
	require.NoError(t, err)

	var views []taskView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 6)

	byTitle := make(map[string][]entities.Task, len(views))
	for _, v := range views {
		byTitle[v.Title] = v.Tasks
	}
	assert.Equal(t, []shared.ID{3}, taskIDs(byTitle["New tasks"]))
	assert.Equal(t, []shared.ID{1}, taskIDs(byTitle["In progress tasks"]))
	assert.Equal(t, []shared.ID{1, 3}, taskIDs(byTitle["Open tasks"]))
	assert.Equal(t, []shared.ID{1}, taskIDs(byTitle["High priority tasks"]))
	assert.Empty(t, byTitle["Medium priority tasks"])
	assert.Equal(t, []shared.ID{1, 3}, taskIDs(byTitle["All tasks"]))

	inProgress := byTitle["In progress tasks"][0]
	assert.Equal(t, "Implement user authentication", inProgress.Name)
	assert.Equal(t, entities.StatusInProgress, inProgress.Status)
}

func TestTasks_Filters(t *testing.T) {
	for _, tc := range []struct {
		name  string
		args  []string
		title string
		want  []shared.ID
	}{
		{"status", []string{"--status", "New"}, "Tasks with status New", []shared.ID{3}},
		{"priorities", []string{"--priority", "High,Low"}, "Tasks with priority High or Low", []shared.ID{1, 3}},
		{"combined", []string{"--status", "New", "--priority", "Low"}, "Tasks with status New and priority Low", []shared.ID{3}},
		{"combined without match", []string{"--status", "In Progress", "--priority", "Low"}, "Tasks with status In Progress and priority Low", []shared.ID{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := run(t, append([]string{"tasks", "-o", "json"}, tc.args...)...)
			require.NoError(t, err)

			var views []taskView
			require.NoError(t, json.Unmarshal([]byte(out), &views))
			require.Len(t, views, 1)
			assert.Equal(t, tc.title, views[0].Title)
			assert.Equal(t, tc.want, taskIDs(views[0].Tasks))
		})
	}
}

func TestTasks_SeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	seed := `
tasks:
  - name: Write docs
    priority: Low
  - name: Release
    priority: High
  - name: Announce
    priority: Medium
    status: Done
`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	out, _, err := run(t, "tasks", "-o", "json", "--seed", path, "--status", "Done")
	require.NoError(t, err)

	var views []taskView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	require.Len(t, views[0].Tasks, 1)
	assert.Equal(t, "Announce", views[0].Tasks[0].Name)
}

func TestTasks_TableOutput(t *testing.T) {
	out, _, err := run(t, "tasks")
	require.NoError(t, err)

	assert.Contains(t, out, "In progress tasks")
	assert.Contains(t, out, "Implement user authentication")
	assert.Contains(t, out, "PRIORITY")
	assert.NotContains(t, out, "Design database schema")
}

func TestTasks_LogsToStderr(t *testing.T) {
	_, stderr, err := run(t, "tasks", "--log-format", "json", "--log-level", "debug")
	require.NoError(t, err)

	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record), line)
	}
	assert.Contains(t, stderr, `"msg":"entity created"`)
	assert.Contains(t, stderr, `"msg":"task added"`)
	assert.Contains(t, stderr, `"msg":"task deleted"`)
}

func TestBank_Report(t *testing.T) {
	out, _, err := run(t, "bank", "-o", "json")
	require.NoError(t, err)

	var report bank.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "XYZ Bank", report.BankName)
	require.Len(t, report.Lines, 2)
	assert.True(t, report.Lines[0].Balance.Equal(decimal.NewFromInt(7000)), report.Lines[0].Balance.String())
	assert.True(t, report.Lines[1].Balance.IsZero())
	assert.True(t, report.Total.Equal(decimal.NewFromInt(7000)))
}

func TestBank_RefusedWithdrawalStillReports(t *testing.T) {
	out, stderr, err := run(t, "bank", "-o", "json", "--withdraw", "100000")
	require.NoError(t, err)

	var report bank.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Lines[0].Balance.Equal(decimal.NewFromInt(7500)))
	assert.Contains(t, stderr, "withdrawal refused")
}

func TestBank_TableOutput(t *testing.T) {
	t.Setenv("REGISTRY_BANK_NAME", "ACME Savings")

	out, _, err := run(t, "bank")
	require.NoError(t, err)

	assert.Contains(t, out, "Accounts Report for ACME Savings")
	assert.Contains(t, out, "John Doe")
	assert.Contains(t, out, "$7000.00")
	assert.Contains(t, out, "TOTAL")
}

func TestBank_StrictUnknownAccount(t *testing.T) {
	_, _, err := run(t, "bank", "--account", "9999")
	assert.NoError(t, err, "unknown accounts are ignored by default")

	_, _, err = run(t, "bank", "--strict", "--account", "9999")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBank_InvalidAmount(t *testing.T) {
	_, _, err := run(t, "bank", "--deposit", "lots")
	assert.ErrorContains(t, err, "--deposit")
}

func TestInvalidOutput(t *testing.T) {
	_, _, err := run(t, "tasks", "-o", "xml")
	assert.ErrorContains(t, err, "invalid output")
}

func TestEvents_RequiresBrokers(t *testing.T) {
	_, _, err := run(t, "events")
	assert.ErrorContains(t, err, "no kafka brokers")
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)

	out, _, err = run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "commit: abc123")
}

func TestPrintEvent(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := mapper.ToMessage(domainrepos.ChangeEvent{
		Kind:       domainrepos.ChangeUpdated,
		EntityID:   7,
		Entity:     entities.Task{Entity: shared.Entity{ID: 7}, Name: "A", Status: entities.StatusDone},
		OccurredAt: at,
	})
	require.NoError(t, err)

	for _, tc := range []struct {
		output string
		want   []string
	}{
		{output: "table", want: []string{"2026-01-02T03:04:05Z", "updated", "#7", `"status":"Done"`}},
		{output: "json", want: []string{`"kind": "updated"`, `"entity_id": 7`, `"name": "A"`}},
	} {
		t.Run(tc.output, func(t *testing.T) {
			a := &app{cfg: &config.Config{Output: tc.output}}
			var out bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&out)

			require.NoError(t, a.printEvent(cmd, msg))
			for _, w := range tc.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}

	msg.Content = `{"tampered":true}`
	a := &app{cfg: &config.Config{Output: "table"}}
	assert.ErrorIs(t, a.printEvent(&cobra.Command{}, msg), mapper.ErrHashMismatch)
}

// fakeFeed is a consumer whose channels are filled by the test.
type fakeFeed struct {
	messages chan *models.Message
	errs     chan error
}

func (f *fakeFeed) ToConsumeBuffered() <-chan *models.Message { return f.messages }
func (f *fakeFeed) Errors() <-chan error                      { return f.errs }
func (f *fakeFeed) Close()                                    {}

func TestTailEvents(t *testing.T) {
	feed := &fakeFeed{messages: make(chan *models.Message, 4), errs: make(chan error, 1)}
	for i, kind := range []domainrepos.ChangeKind{domainrepos.ChangeCreated, domainrepos.ChangeDeleted} {
		msg, err := mapper.ToMessage(domainrepos.ChangeEvent{
			Seq:      uint64(i + 1),
			Kind:     kind,
			EntityID: 1,
			Entity:   entities.Task{Entity: shared.Entity{ID: 1}, Name: "A"},
		})
		require.NoError(t, err)
		feed.messages <- msg
	}
	tampered, err := mapper.ToMessage(domainrepos.ChangeEvent{Seq: 3, Kind: domainrepos.ChangeUpdated, Entity: entities.Task{Name: "B"}})
	require.NoError(t, err)
	tampered.Content = "{}"
	feed.messages <- tampered
	close(feed.messages)

	a := &app{cfg: &config.Config{Output: "json"}}
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	require.NoError(t, a.tailEvents(cmd, feed, 0))

	var seqs []uint64
	dec := json.NewDecoder(&out)
	for dec.More() {
		var line eventLine
		require.NoError(t, dec.Decode(&line))
		seqs = append(seqs, line.Seq)
	}
	assert.Equal(t, []uint64{1, 2}, seqs, "events with a bad hash are skipped")
}

func TestTailEvents_StopsAtLimit(t *testing.T) {
	feed := &fakeFeed{messages: make(chan *models.Message, 2), errs: make(chan error)}
	msg, err := mapper.ToMessage(domainrepos.ChangeEvent{Seq: 1, Kind: domainrepos.ChangeCreated, Entity: entities.Task{Name: "A"}})
	require.NoError(t, err)
	feed.messages <- msg

	a := &app{cfg: &config.Config{Output: "table"}}
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	require.NoError(t, a.tailEvents(cmd, feed, 1))
	assert.Contains(t, out.String(), "created")
}
