package cli

import (
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/whiteelite/registry/internal/application/bank"
	"github.com/whiteelite/registry/internal/domain/entities"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	emptyStyle  = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
)

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// taskView is one titled list of tasks.
type taskView struct {
	Title string          `json:"title"`
	Tasks []entities.Task `json:"tasks"`
}

func renderTaskViews(w io.Writer, views []taskView) error {
	for i, view := range views {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, titleStyle.Render(view.Title))
		if len(view.Tasks) == 0 {
			fmt.Fprintln(w, emptyStyle.Render("no tasks"))
			continue
		}

		t := newTable("ID", "NAME", "DESCRIPTION", "PRIORITY", "STATUS")
		for _, task := range view.Tasks {
			t.Row(
				strconv.FormatUint(uint64(task.ID), 10),
				task.Name,
				task.Description,
				string(task.Priority),
				string(task.Status),
			)
		}
		fmt.Fprintln(w, t.Render())
	}
	return nil
}

func renderReport(w io.Writer, r bank.Report) error {
	fmt.Fprintln(w, titleStyle.Render("Accounts Report for "+r.BankName))
	if len(r.Lines) == 0 {
		fmt.Fprintln(w, emptyStyle.Render("no accounts"))
		return nil
	}

	t := newTable("ACCOUNT", "HOLDER", "BALANCE")
	for _, line := range r.Lines {
		t.Row(
			strconv.FormatInt(int64(line.Number), 10),
			string(line.Holder),
			"$"+line.Balance.StringFixed(2),
		)
	}
	t.Row("", "TOTAL", "$"+r.Total.StringFixed(2))
	fmt.Fprintln(w, t.Render())
	return nil
}
