// internal/display/table.go
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cloudtask/internal/models"
)

// Column describes one table column. Transform, when set, overrides the
// default value formatting; Left controls alignment.
type Column struct {
	Key       string
	Header    string
	Left      bool
	Transform func(interface{}) string
}

const titleWidth = 40

// TaskColumns is the default task table layout.
func TaskColumns() []Column {
	return []Column{
		{Key: "id", Header: "ID"},
		{Key: "title", Header: "TITLE", Left: true, Transform: func(v interface{}) string {
			return truncate(formatValue(v), titleWidth)
		}},
		{Key: "status", Header: "STATUS", Left: true},
		{Key: "priority", Header: "PRI"},
		{Key: "tags", Header: "TAGS", Left: true},
		{Key: "created", Header: "CREATED", Left: true, Transform: func(v interface{}) string {
			ts, ok := v.(float64)
			if !ok {
				return "-"
			}
			return models.FormatTimestamp(ts)
		}},
		{Key: "due_date", Header: "DUE", Left: true},
		{Key: "assigned_to", Header: "ASSIGNED", Left: true},
	}
}

// RenderTasks prints tasks as an aligned table with the default columns.
func RenderTasks(w io.Writer, tasks []models.Task) error {
	return RenderTable(w, tasks, TaskColumns())
}

// RenderTable prints tasks as an aligned text table. Column widths adapt to
// the widest cell; missing values render as a dash.
func RenderTable(w io.Writer, tasks []models.Task, cols []Column) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}

	grid := make([][]string, len(tasks))
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = len(col.Header)
	}

	for r, task := range tasks {
		row := task.Row()
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = cellText(row[col.Key], col)
			if len(cells[i]) > widths[i] {
				widths[i] = len(cells[i])
			}
		}
		grid[r] = cells
	}

	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = col.Header
	}
	if err := writeRow(w, headers, widths, cols); err != nil {
		return err
	}
	for _, cells := range grid {
		if err := writeRow(w, cells, widths, cols); err != nil {
			return err
		}
	}
	return nil
}

// RenderJSON prints tasks as indented JSON for the raw output mode.
func RenderJSON(w io.Writer, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tasks)
}

func writeRow(w io.Writer, cells []string, widths []int, cols []Column) error {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if cols[i].Left {
			parts[i] = cell + strings.Repeat(" ", widths[i]-len(cell))
		} else {
			parts[i] = strings.Repeat(" ", widths[i]-len(cell)) + cell
		}
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	return err
}

// cellText renders one cell. Spaces become underscores so columns stay
// machine-splittable on whitespace.
func cellText(v interface{}, col Column) string {
	var text string
	if col.Transform != nil {
		if v == nil {
			return "-"
		}
		text = col.Transform(v)
	} else {
		text = formatValue(v)
	}
	if text == "" || text == "-" {
		return "-"
	}
	return strings.ReplaceAll(text, " ", "_")
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		return t
	case []string:
		return strings.Join(t, ",")
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
