// internal/store/memory/store.go
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"cloudtask/internal/models"
	"cloudtask/internal/query"
	"cloudtask/internal/store"
)

// Store keeps tasks in memory and filters them with compiled predicates.
// It backs offline use and tests; semantics mirror the SQL backend,
// including the AND-of-elements behavior of tag membership.
type Store struct {
	mu     sync.RWMutex
	tasks  []models.Task
	nextID int64
}

func New(seed []models.Task) *Store {
	s := &Store{tasks: append([]models.Task(nil), seed...)}
	for _, t := range s.tasks {
		if t.ID >= s.nextID {
			s.nextID = t.ID
		}
	}
	return s
}

// Search applies the filter's predicate, then sorts and limits.
func (s *Store) Search(ctx context.Context, f *query.Filter) ([]models.Task, error) {
	pred, err := store.Predicate(f)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Task
	for _, task := range s.tasks {
		if pred(task.Row()) {
			matched = append(matched, task)
		}
	}

	order := f.Order
	if len(order) == 0 {
		order = models.DefaultOrder()
	}
	sortTasks(matched, order)

	limit := f.Limit
	if limit <= 0 {
		limit = models.DefaultLimit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Add stores a task, assigning the next ID when none is set.
func (s *Store) Add(task models.Task) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.ID == 0 {
		s.nextID++
		task.ID = s.nextID
	} else if task.ID > s.nextID {
		s.nextID = task.ID
	}
	s.tasks = append(s.tasks, task)
	return task
}

// Delete removes a task by ID and reports whether it existed.
func (s *Store) Delete(taskID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == taskID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

func sortTasks(tasks []models.Task, order []query.OrderBy) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := tasks[i].Row(), tasks[j].Row()
		for _, key := range order {
			cmp := compareRowValues(ri[key.Field], rj[key.Field])
			if cmp == 0 {
				continue
			}
			if strings.EqualFold(key.Direction, query.DirDesc) {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// compareRowValues orders row attributes for sorting: nil sorts before
// any value, numbers numerically, everything else as strings.
func compareRowValues(a, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(toText(a), toText(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

func toText(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
