// internal/tasks/service.go
package tasks

import (
	"context"
	"strings"
	"time"

	"cloudtask/internal/cache"
	"cloudtask/internal/common/concurrent"
	"cloudtask/internal/common/config"
	stderrors "cloudtask/internal/common/errors"
	"cloudtask/internal/common/logger"
	"cloudtask/internal/common/validation"
	"cloudtask/internal/models"
	"cloudtask/internal/query"
)

// Backend executes task searches. The remote API, PostgreSQL,
// Elasticsearch, and the in-memory store all satisfy it.
type Backend interface {
	Search(ctx context.Context, f *query.Filter) ([]models.Task, error)
}

// Remote is the write side of the CloudTask API. Search-only backends run
// without one; write commands then fail with a configuration error.
type Remote interface {
	CreateTask(ctx context.Context, payload map[string]interface{}) (*models.Task, error)
	UpdateTask(ctx context.Context, taskID int64, payload map[string]interface{}) error
	DeleteTask(ctx context.Context, taskID int64) error
}

// Service ties query parsing, the search backend, the write API, and the
// result cache together behind the CLI commands.
type Service struct {
	parser  *query.Parser
	backend Backend
	remote  Remote
	cache   *cache.SearchCache
	batch   config.BatchConfig
	log     logger.Logger
}

func NewService(backend Backend, remote Remote, searchCache *cache.SearchCache, batch config.BatchConfig, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		parser:  query.NewParser(models.FieldContext(), log),
		backend: backend,
		remote:  remote,
		cache:   searchCache,
		batch:   batch,
		log:     log,
	}
}

// ParseQuery builds a filter from raw CLI words on top of a base filter.
func (s *Service) ParseQuery(args []string, base *query.Filter) (*query.Filter, error) {
	f, err := s.parser.ParseArgs(args, base)
	if err != nil {
		return nil, stderrors.NewQueryParseError(err)
	}
	return f, nil
}

// Search runs a filter against the backend, consulting the cache first when
// one is configured. Cache problems never fail the search.
func (s *Service) Search(ctx context.Context, f *query.Filter) ([]models.Task, error) {
	if s.cache != nil {
		var cached []models.Task
		if s.cache.Get(ctx, f, &cached) {
			s.log.Debug("search served from cache", map[string]interface{}{
				"results": len(cached),
			})
			return cached, nil
		}
	}

	tasks, err := s.backend.Search(ctx, f)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, f, tasks)
	}
	return tasks, nil
}

// Create validates a payload and creates the task remotely.
func (s *Service) Create(ctx context.Context, payload map[string]interface{}) (*models.Task, error) {
	if s.remote == nil {
		return nil, stderrors.NewConfigError("task writes require the api backend")
	}

	result, err := validation.ValidateCreate(payload)
	if err != nil {
		return nil, stderrors.NewTaskValidationError(err.Error())
	}
	if !result.Valid {
		return nil, stderrors.NewTaskValidationError(strings.Join(result.GetErrorMessages(), "; "))
	}

	task, err := s.remote.CreateTask(ctx, payload)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return task, nil
}

// BatchResult reports the outcome of a concurrent batch update.
type BatchResult struct {
	Updated  int
	Failures []BatchFailure
}

type BatchFailure struct {
	TaskID int64
	Err    error
}

// BatchUpdate applies one payload to many tasks across a worker pool. Every
// task is attempted; the returned result pairs each failed ID with its
// error, and the error summarizes the batch when anything failed.
func (s *Service) BatchUpdate(ctx context.Context, taskIDs []int64, payload map[string]interface{}) (*BatchResult, error) {
	if s.remote == nil {
		return nil, stderrors.NewConfigError("task writes require the api backend")
	}

	result, err := validation.ValidateUpdate(payload)
	if err != nil {
		return nil, stderrors.NewTaskValidationError(err.Error())
	}
	if !result.Valid {
		return nil, stderrors.NewTaskValidationError(strings.Join(result.GetErrorMessages(), "; "))
	}

	opts := concurrent.Options{
		Workers:    s.batch.Workers,
		MaxRetries: s.batch.MaxRetries,
		Backoff:    time.Duration(s.batch.BackoffMS) * time.Millisecond,
	}
	errs := concurrent.Execute(ctx, len(taskIDs), opts, func(ctx context.Context, i int) error {
		return s.remote.UpdateTask(ctx, taskIDs[i], payload)
	})

	out := &BatchResult{}
	for i, itemErr := range errs {
		if itemErr != nil {
			out.Failures = append(out.Failures, BatchFailure{TaskID: taskIDs[i], Err: itemErr})
			continue
		}
		out.Updated++
	}

	if out.Updated > 0 {
		s.invalidateCache(ctx)
	}
	if len(out.Failures) > 0 {
		return out, stderrors.NewBatchUpdateError(len(out.Failures), len(taskIDs))
	}
	return out, nil
}

// Delete removes one task remotely.
func (s *Service) Delete(ctx context.Context, taskID int64) error {
	if s.remote == nil {
		return stderrors.NewConfigError("task writes require the api backend")
	}
	if err := s.remote.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// ClearCache drops every cached search result.
func (s *Service) ClearCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.Clear(ctx)
}

// Cached results go stale on any write. Dropping the whole prefix is
// cheaper than tracking which filters a task matched.
func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Clear(ctx); err != nil {
		s.log.Warn("failed to invalidate search cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
