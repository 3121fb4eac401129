// internal/display/table_test.go
package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudtask/internal/models"
)

func renderLines(t *testing.T, tasks []models.Task) []string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RenderTasks(&buf, tasks))
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

func TestRenderTasks_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTasks(&buf, nil))
	assert.Equal(t, "No results found.\n", buf.String())
}

func TestRenderTasks_HeaderAndCells(t *testing.T) {
	lines := renderLines(t, []models.Task{
		{ID: 12, Title: "Ship release", Status: "active", Priority: 8,
			Tags: []string{"work", "urgent"}, DueDate: "2026-09-01", AssignedTo: "alice"},
	})

	require.Len(t, lines, 2)
	header := strings.Fields(lines[0])
	assert.Equal(t, []string{"ID", "TITLE", "STATUS", "PRI", "TAGS", "CREATED", "DUE", "ASSIGNED"}, header)

	cells := strings.Fields(lines[1])
	assert.Equal(t, []string{"12", "Ship_release", "active", "8", "work,urgent", "-", "2026-09-01", "alice"}, cells)
}

func TestRenderTasks_MissingValuesRenderDash(t *testing.T) {
	lines := renderLines(t, []models.Task{{ID: 1, Title: "Bare"}})

	cells := strings.Fields(lines[1])
	// status, tags, created, due, assigned all unset; priority zero still prints
	assert.Equal(t, []string{"1", "Bare", "-", "0", "-", "-", "-", "-"}, cells)
}

func TestRenderTasks_TitleTruncation(t *testing.T) {
	long := strings.Repeat("a", 60)
	lines := renderLines(t, []models.Task{{ID: 1, Title: long}})

	cells := strings.Fields(lines[1])
	assert.Equal(t, strings.Repeat("a", 37)+"...", cells[1])
}

func TestRenderTasks_CreatedUsesTimestampFormat(t *testing.T) {
	lines := renderLines(t, []models.Task{{ID: 1, Title: "x", Created: 1710000000}})

	want := strings.ReplaceAll(models.FormatTimestamp(1710000000), " ", "_")
	assert.Contains(t, lines[1], want)
}

func TestRenderTasks_ColumnsStayAligned(t *testing.T) {
	lines := renderLines(t, []models.Task{
		{ID: 1, Title: "Short", Status: "active"},
		{ID: 234, Title: "A longer title here", Status: "blocked"},
	})

	require.Len(t, lines, 3)
	// every row splits into the same number of fields
	for _, line := range lines {
		assert.Len(t, strings.Fields(line), 8)
	}
	// the STATUS column starts at the same offset in both data rows
	assert.Equal(t, strings.Index(lines[1], "active"), strings.Index(lines[2], "blocked"))
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, []models.Task{{ID: 1, Title: "x"}}))
	assert.Contains(t, buf.String(), `"title": "x"`)

	buf.Reset()
	require.NoError(t, RenderJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}
