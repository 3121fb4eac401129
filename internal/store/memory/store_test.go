// internal/store/memory/store_test.go
package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudtask/internal/models"
	"cloudtask/internal/query"
	"cloudtask/internal/store"
)

func seedStore() *Store {
	return New([]models.Task{
		{ID: 1, Title: "Quarterly report", Status: "active", Priority: 8, Tags: []string{"work", "urgent"}, Created: 1710000000, Project: "apollo"},
		{ID: 2, Title: "Standup notes", Status: "active", Priority: 3, Created: 1710100000},
		{ID: 3, Title: "Archive old docs", Status: "done", Priority: 3, Tags: []string{"work"}, Created: 1709000000, AssignedTo: "alice"},
		{ID: 4, Title: "Plan offsite", Status: "blocked", Priority: 9, Created: 1710200000, AssignedTo: "bob"},
	})
}

func ids(tasks []models.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestSearch_FiltersAndDefaultOrder(t *testing.T) {
	s := seedStore()

	f := query.NewFilter()
	f.Fields["status"] = query.Constraint{query.OpEq: "active"}

	tasks, err := s.Search(context.Background(), f)
	require.NoError(t, err)
	// priority desc, then created desc
	assert.Equal(t, []int64{1, 2}, ids(tasks))
}

func TestSearch_TagMembershipRequiresAllElements(t *testing.T) {
	s := seedStore()

	f := query.NewFilter()
	f.Fields["tags"] = query.Constraint{query.OpIn: []string{"work", "urgent"}}

	tasks, err := s.Search(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(tasks))
}

func TestSearch_ExplicitOrderAndLimit(t *testing.T) {
	s := seedStore()

	f := query.NewFilter()
	f.Order = []query.OrderBy{{Field: "created", Direction: query.DirAsc}}
	f.Limit = 2

	tasks, err := s.Search(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids(tasks))
}

func TestSearch_NumericComparison(t *testing.T) {
	s := seedStore()

	f := query.NewFilter()
	f.Fields["priority"] = query.Constraint{query.OpGte: "8"}

	tasks, err := s.Search(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 1}, ids(tasks))
}

func TestSearch_NullCheck(t *testing.T) {
	s := seedStore()

	f := query.NewFilter()
	f.Fields["assigned_to"] = query.Constraint{query.OpNeq: nil}

	tasks, err := s.Search(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3}, ids(tasks))
}

func TestSearch_InvalidListValue(t *testing.T) {
	s := seedStore()

	f := query.NewFilter()
	f.Fields["tags"] = query.Constraint{query.OpIn: []string{}}

	_, err := s.Search(context.Background(), f)
	require.Error(t, err)
	var terr *store.TranslationError
	assert.ErrorAs(t, err, &terr)
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	s := seedStore()

	added := s.Add(models.Task{Title: "New one", Status: "active"})
	assert.Equal(t, int64(5), added.ID)

	f := query.NewFilter()
	f.Fields["title"] = query.Constraint{query.OpEq: "New one"}
	tasks, err := s.Search(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
}

func TestDelete(t *testing.T) {
	s := seedStore()

	assert.True(t, s.Delete(2))
	assert.False(t, s.Delete(2))

	tasks, err := s.Search(context.Background(), query.NewFilter())
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
}
