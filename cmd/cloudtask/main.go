// cmd/cloudtask/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"cloudtask/internal/api"
	"cloudtask/internal/cache"
	"cloudtask/internal/common/config"
	"cloudtask/internal/common/database"
	stderrors "cloudtask/internal/common/errors"
	"cloudtask/internal/common/logger"
	"cloudtask/internal/query"
	"cloudtask/internal/store/elastic"
	"cloudtask/internal/store/memory"
	"cloudtask/internal/store/postgres"
	"cloudtask/internal/tasks"
)

const version = "2.3.0"

func main() {
	flags := pflag.NewFlagSet("cloudtask", pflag.ContinueOnError)
	flags.SortFlags = false

	var (
		apiKey     = flags.String("api-key", "", "API key (overrides env and config)")
		apiURL     = flags.String("url", "", "API base URL (overrides config)")
		configPath = flags.String("config", "", "path to a config file")
		rawOutput  = flags.Bool("raw", false, "print results as JSON instead of a table")
		explain    = flags.Bool("explain", false, "print the parsed filter without executing")
		limit      = flags.Int("limit", 50, "maximum number of search results")
		order      = flags.String("order", "priority-", "sort keys, comma separated; trailing - means descending")
		sets       = flags.StringArray("set", nil, "field=value pair for create and update, repeatable")
		verbose    = flags.BoolP("verbose", "v", false, "enable debug logging")
	)
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	if args[0] == "version" {
		fmt.Println("cloudtask " + version)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}

	level := cfg.Logging.Level
	if *verbose {
		level = "debug"
	}
	log := logger.NewStructured(level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli{
		cfg:     cfg,
		log:     log,
		out:     os.Stdout,
		apiKey:  config.ResolveAPIKey(*apiKey, cfg),
		raw:     *rawOutput,
		explain: *explain,
		limit:   *limit,
		order:   *order,
		sets:    *sets,
	}

	if err := app.run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", userMessage(err))
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// buildService wires the backend named in the config. Only the api driver
// gets a write side; database backends are read-only mirrors.
func (c *cli) buildService(ctx context.Context) (*tasks.Service, error) {
	var (
		backend tasks.Backend
		remote  tasks.Remote
	)

	switch c.cfg.Backend.Driver {
	case "api":
		client := api.NewClient(c.cfg.API, c.apiKey, c.log)
		backend = client
		remote = client
	case "postgres":
		pg, err := database.NewPostgres(c.cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		if err := pg.Ping(ctx); err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pg.Close)
		backend = postgres.New(pg, c.log)
	case "elasticsearch":
		es, err := database.NewElasticsearch(c.cfg.Database.Elasticsearch)
		if err != nil {
			return nil, err
		}
		backend = elastic.New(es, c.cfg.Database.Elasticsearch.Index, c.log)
	case "memory":
		backend = memory.New(nil)
	default:
		return nil, stderrors.NewConfigError(fmt.Sprintf("unknown backend driver %q", c.cfg.Backend.Driver))
	}

	var searchCache *cache.SearchCache
	if c.cfg.Cache.Enabled {
		rdb, err := database.NewRedis(c.cfg.Database.Redis)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, rdb.Close)
		searchCache = cache.NewSearchCache(rdb, c.cfg.Cache, c.log)
	}

	return tasks.NewService(backend, remote, searchCache, c.cfg.Batch, c.log), nil
}

func userMessage(err error) string {
	var serr *stderrors.StandardError
	if errors.As(err, &serr) {
		return serr.UserMessage()
	}
	var perr *query.ParseError
	if errors.As(err, &perr) {
		return perr.Error()
	}
	return err.Error()
}

const usage = `cloudtask - task tracking from the command line

Usage:
  cloudtask [flags] search tasks [query ...]
  cloudtask [flags] create task --set field=value ...
  cloudtask [flags] update tasks <id ...> --set field=value ...
  cloudtask [flags] delete task <id>
  cloudtask set api-key <key>
  cloudtask show config
  cloudtask clear cache
  cloudtask version

Query clauses look like: status=active priority>=5 tags in [work,urgent]

Flags:
  --api-key string   API key (overrides env and config)
  --url string       API base URL (overrides config)
  --config string    path to a config file
  --limit int        maximum number of search results (default 50)
  --order string     sort keys, e.g. "priority-,created" (default "priority-")
  --set field=value  field to set for create and update, repeatable
  --raw              print results as JSON instead of a table
  --explain          print the parsed filter without executing
  -v, --verbose      enable debug logging
`
