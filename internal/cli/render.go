package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"habit-tracker/internal/domain"
)

// GridView is the month-to-date grid: one row per day, one column per task.
type GridView struct {
	From  string     `json:"from"`
	To    string     `json:"to"`
	Tasks []GridTask `json:"tasks"`
	Days  []GridDay  `json:"days"`
}

// GridTask is a column header.
type GridTask struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GridDay holds one completion flag per task, in column order.
type GridDay struct {
	Date      string `json:"date"`
	Completed []bool `json:"completed"`
}

// BuildGridView lays out the snapshot from the first of today's month through today.
func BuildGridView(snapshot *domain.Snapshot, today domain.Date) GridView {
	view := GridView{
		From:  today.StartOfMonth().String(),
		To:    today.String(),
		Tasks: make([]GridTask, 0, len(snapshot.Tasks)),
		Days:  []GridDay{},
	}
	for _, task := range snapshot.Tasks {
		view.Tasks = append(view.Tasks, GridTask{ID: task.ID, Name: task.Name})
	}

	for _, date := range domain.MonthToDate(today) {
		day := GridDay{Date: date.String(), Completed: make([]bool, 0, len(snapshot.Tasks))}
		for _, task := range snapshot.Tasks {
			day.Completed = append(day.Completed, snapshot.Completions.IsCompleted(task.ID, date))
		}
		view.Days = append(view.Days, day)
	}
	return view
}

// RenderGridJSON writes the view as indented JSON.
func RenderGridJSON(w io.Writer, view GridView) error {
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("encode grid: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// TextStyle controls how the text grid prints cells.
type TextStyle struct {
	// CompletedMark fills the cell of a done day.
	CompletedMark string
	// DateFormat is a Go time layout for the date column; empty keeps YYYY-MM-DD.
	DateFormat string
}

func (s TextStyle) formatDate(date string) string {
	if s.DateFormat == "" {
		return date
	}
	d, err := domain.ParseDate(date)
	if err != nil {
		return date
	}
	return d.Time().Format(s.DateFormat)
}

// RenderGridText writes the view as a bordered table. Task headers carry the
// id so commands can refer to them.
func RenderGridText(w io.Writer, view GridView, style TextStyle) error {
	if len(view.Tasks) == 0 {
		_, err := fmt.Fprintln(w, "No habits yet. Add one with: habit add <name>")
		return err
	}

	headers := []string{"Date"}
	for _, task := range view.Tasks {
		headers = append(headers, task.Name+" #"+strconv.FormatInt(task.ID, 10))
	}

	rows := make([][]string, 0, len(view.Days))
	for _, day := range view.Days {
		row := []string{style.formatDate(day.Date)}
		for _, done := range day.Completed {
			if done {
				row = append(row, style.CompletedMark)
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
