// cmd/cloudtask/commands.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cloudtask/internal/common/config"
	stderrors "cloudtask/internal/common/errors"
	"cloudtask/internal/common/logger"
	"cloudtask/internal/display"
	"cloudtask/internal/models"
	"cloudtask/internal/query"
	"cloudtask/internal/store"
	"cloudtask/internal/store/postgres"
)

type cli struct {
	cfg     *config.Config
	log     logger.Logger
	out     io.Writer
	apiKey  string
	raw     bool
	explain bool
	limit   int
	order   string
	sets    []string
	closers []func() error
}

// run dispatches a verb-object command line: "search tasks", "create task",
// and so on.
func (c *cli) run(ctx context.Context, args []string) error {
	defer func() {
		for _, closeFn := range c.closers {
			_ = closeFn()
		}
	}()

	verb := args[0]
	var object string
	if len(args) > 1 {
		object = args[1]
	}
	rest := args[2:]

	switch {
	case verb == "search" && (object == "tasks" || object == "task"):
		return c.cmdSearch(ctx, rest)
	case verb == "create" && object == "task":
		return c.cmdCreate(ctx)
	case verb == "update" && (object == "tasks" || object == "task"):
		return c.cmdUpdate(ctx, rest)
	case verb == "delete" && object == "task":
		return c.cmdDelete(ctx, rest)
	case verb == "set" && object == "api-key":
		return c.cmdSetAPIKey(rest)
	case verb == "show" && object == "config":
		return c.cmdShowConfig()
	case verb == "clear" && object == "cache":
		return c.cmdClearCache(ctx)
	default:
		return fmt.Errorf("unknown command %q, run with --help for usage", strings.TrimSpace(verb+" "+object))
	}
}

func (c *cli) cmdSearch(ctx context.Context, words []string) error {
	base := query.NewFilter()
	base.Order = query.ParseOrder(c.order)
	base.Limit = c.limit

	svc, err := c.buildService(ctx)
	if err != nil {
		return err
	}

	f, err := svc.ParseQuery(words, base)
	if err != nil {
		return err
	}

	if c.explain {
		return c.explainFilter(f)
	}

	results, err := svc.Search(ctx, f)
	if err != nil {
		return err
	}

	if c.raw {
		return display.RenderJSON(c.out, results)
	}
	return display.RenderTasks(c.out, results)
}

// explainFilter prints the parsed filter, plus the generated SQL when the
// postgres backend would run it.
func (c *cli) explainFilter(f *query.Filter) error {
	doc, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, string(doc))

	if c.cfg.Backend.Driver == "postgres" {
		plan, err := store.Translate(f, postgres.Contract())
		if err != nil {
			return err
		}
		sqlText, args := postgres.BuildSelect(plan)
		fmt.Fprintln(c.out, sqlText)
		fmt.Fprintf(c.out, "args: %v\n", args)
	}
	return nil
}

func (c *cli) cmdCreate(ctx context.Context) error {
	payload, err := parseSetPairs(c.sets)
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		return fmt.Errorf("create task requires at least one --set pair, e.g. --set title=\"Write report\"")
	}

	svc, err := c.buildService(ctx)
	if err != nil {
		return err
	}

	task, err := svc.Create(ctx, payload)
	if err != nil {
		return err
	}

	if c.raw {
		return display.RenderJSON(c.out, []models.Task{*task})
	}
	fmt.Fprintf(c.out, "Created task %d: %s\n", task.ID, task.Title)
	return nil
}

func (c *cli) cmdUpdate(ctx context.Context, args []string) error {
	taskIDs, err := parseTaskIDs(args)
	if err != nil {
		return err
	}
	if len(taskIDs) == 0 {
		return fmt.Errorf("update tasks requires at least one task ID")
	}

	payload, err := parseSetPairs(c.sets)
	if err != nil {
		return err
	}

	svc, err := c.buildService(ctx)
	if err != nil {
		return err
	}

	result, batchErr := svc.BatchUpdate(ctx, taskIDs, payload)
	if result != nil {
		fmt.Fprintf(c.out, "Updated %d of %d tasks\n", result.Updated, len(taskIDs))
		for _, failure := range result.Failures {
			fmt.Fprintf(c.out, "  task %d: %s\n", failure.TaskID, userMessage(failure.Err))
		}
	}
	return batchErr
}

func (c *cli) cmdDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("delete task requires exactly one task ID")
	}
	taskID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid task ID %q", args[0])
	}

	svc, err := c.buildService(ctx)
	if err != nil {
		return err
	}
	if err := svc.Delete(ctx, taskID); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted task %d\n", taskID)
	return nil
}

func (c *cli) cmdSetAPIKey(args []string) error {
	if len(args) != 1 || args[0] == "" {
		return fmt.Errorf("set api-key requires the key as its argument")
	}
	if err := config.SaveAPIKey(c.cfg.API.KeyFile, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "API key saved to %s\n", c.cfg.API.KeyFile)
	return nil
}

// cmdShowConfig prints the effective configuration with secrets redacted.
func (c *cli) cmdShowConfig() error {
	shown := *c.cfg
	if shown.API.Key != "" {
		shown.API.Key = "<redacted>"
	}
	shown.Database.Postgres.Password = redactIfSet(shown.Database.Postgres.Password)
	shown.Database.Elasticsearch.Password = redactIfSet(shown.Database.Elasticsearch.Password)
	shown.Database.Redis.Password = redactIfSet(shown.Database.Redis.Password)

	doc, err := json.MarshalIndent(shown, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, string(doc))
	return nil
}

func redactIfSet(value string) string {
	if value == "" {
		return ""
	}
	return "<redacted>"
}

func (c *cli) cmdClearCache(ctx context.Context) error {
	if !c.cfg.Cache.Enabled {
		return stderrors.NewConfigError("the search cache is not enabled")
	}
	svc, err := c.buildService(ctx)
	if err != nil {
		return err
	}
	n, err := svc.ClearCache(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Cleared %d cached searches\n", n)
	return nil
}

func parseTaskIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid task ID %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseSetPairs turns --set field=value pairs into a typed payload. Numeric
// fields coerce to numbers, tags split on commas, booleans stay strings
// because no task field is boolean.
func parseSetPairs(pairs []string) (map[string]interface{}, error) {
	payload := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		field, value, found := strings.Cut(pair, "=")
		if !found || field == "" {
			return nil, fmt.Errorf("invalid --set pair %q, expected field=value", pair)
		}
		if canonical, ok := models.TaskAliases[field]; ok {
			field = canonical
		}
		payload[field] = coerceFieldValue(field, value)
	}
	return payload, nil
}

func coerceFieldValue(field, value string) interface{} {
	switch field {
	case "priority", "id":
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	case "estimate":
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return n
		}
	case "tags":
		var tags []string
		for _, tag := range strings.Split(value, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
		return tags
	}
	return value
}
