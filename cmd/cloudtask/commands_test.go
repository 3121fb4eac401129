// cmd/cloudtask/commands_test.go
package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudtask/internal/common/config"
	"cloudtask/internal/common/logger"
)

func newTestCLI(t *testing.T, driver string) (*cli, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := &config.Config{}
	cfg.Backend.Driver = driver
	return &cli{
		cfg:   cfg,
		log:   logger.NewTestLogger(t),
		out:   &buf,
		limit: 50,
		order: "priority-",
	}, &buf
}

func TestParseSetPairs_CoercesTypedFields(t *testing.T) {
	payload, err := parseSetPairs([]string{
		"title=Write report",
		"priority=7",
		"estimate=1.5",
		"tags=work, urgent",
		"prio=3",
	})
	require.NoError(t, err)

	assert.Equal(t, "Write report", payload["title"])
	assert.Equal(t, 1.5, payload["estimate"])
	assert.Equal(t, []string{"work", "urgent"}, payload["tags"])
	// the alias lands on the canonical field, last write wins
	assert.Equal(t, 3, payload["priority"])
}

func TestParseSetPairs_RejectsMalformedPair(t *testing.T) {
	_, err := parseSetPairs([]string{"title"})
	assert.Error(t, err)

	_, err = parseSetPairs([]string{"=value"})
	assert.Error(t, err)
}

func TestParseTaskIDs(t *testing.T) {
	ids, err := parseTaskIDs([]string{"1", "42"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 42}, ids)

	_, err = parseTaskIDs([]string{"1", "abc"})
	assert.Error(t, err)
}

func TestRun_UnknownCommand(t *testing.T) {
	c, _ := newTestCLI(t, "memory")
	err := c.run(context.Background(), []string{"frobnicate", "tasks"})
	assert.ErrorContains(t, err, "unknown command")
}

func TestRun_SearchAgainstMemoryBackend(t *testing.T) {
	c, buf := newTestCLI(t, "memory")
	err := c.run(context.Background(), []string{"search", "tasks", "status=active"})
	require.NoError(t, err)
	assert.Equal(t, "No results found.\n", buf.String())
}

func TestRun_ExplainPrintsFilterWithoutExecuting(t *testing.T) {
	c, buf := newTestCLI(t, "memory")
	c.explain = true

	err := c.run(context.Background(), []string{"search", "tasks", "priority>=5"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"gte": "5"`)
	assert.Contains(t, buf.String(), `"limit": 50`)
}

func TestRun_WriteCommandsNeedRemote(t *testing.T) {
	c, _ := newTestCLI(t, "memory")
	c.sets = []string{"title=x"}

	err := c.run(context.Background(), []string{"create", "task"})
	assert.ErrorContains(t, err, "api backend")
}

func TestRun_SearchParseErrorSurfaces(t *testing.T) {
	c, _ := newTestCLI(t, "memory")
	err := c.run(context.Background(), []string{"search", "tasks", "(status)"})
	require.Error(t, err)
	assert.Contains(t, userMessage(err), "unconsumed text")
}
