// internal/store/postgres/store.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"cloudtask/internal/common/database"
	stderrors "cloudtask/internal/common/errors"
	"cloudtask/internal/common/logger"
	"cloudtask/internal/models"
	"cloudtask/internal/query"
	"cloudtask/internal/store"
)

const selectColumns = "id, title, description, status, priority, tags, created, updated, due_date, assigned_to, project, estimate"

// Store executes task searches against PostgreSQL. Tags live in a TEXT
// column as JSON, which is why the translation contract declares them
// multi-valued.
type Store struct {
	db  *sql.DB
	log logger.Logger
}

func New(client *database.PostgresClient, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{db: client.DB, log: log}
}

// Contract describes the tasks table to the translator.
func Contract() store.Contract {
	return store.Contract{
		Columns:      models.TaskFields,
		MultiValued:  models.MultiValuedFields,
		DefaultOrder: models.DefaultOrder(),
		DefaultLimit: models.DefaultLimit,
	}
}

// Search translates the filter and runs the resulting SELECT.
func (s *Store) Search(ctx context.Context, f *query.Filter) ([]models.Task, error) {
	plan, err := store.Translate(f, Contract())
	if err != nil {
		return nil, err
	}

	sqlText, args := BuildSelect(plan)
	s.log.Debug("executing task search", map[string]interface{}{
		"sql":  sqlText,
		"args": len(args),
	})

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, stderrors.NewDatabaseError(err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, stderrors.NewDatabaseError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewDatabaseError(err)
	}
	return tasks, nil
}

// BuildSelect renders a query plan as a SELECT statement with PostgreSQL
// positional placeholders. The limit is bound like any other parameter.
func BuildSelect(plan *store.QueryPlan) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selectColumns)
	sb.WriteString(" FROM tasks")

	if len(plan.Clauses) > 0 {
		exprs := make([]string, len(plan.Clauses))
		for i, cl := range plan.Clauses {
			exprs[i] = cl.Expr
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(exprs, " AND "))
	}

	if len(plan.OrderBy) > 0 {
		keys := make([]string, len(plan.OrderBy))
		for i, o := range plan.OrderBy {
			keys[i] = o.Field + " " + o.Direction
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(keys, ", "))
	}

	sb.WriteString(" LIMIT ?")
	args := append(plan.Args(), plan.Limit)
	return renumberPlaceholders(sb.String()), args
}

// renumberPlaceholders rewrites ? placeholders to $1, $2, ... No user text
// reaches the statement, so every ? is a placeholder.
func renumberPlaceholders(sqlText string) string {
	var sb strings.Builder
	n := 0
	for i := 0; i < len(sqlText); i++ {
		if sqlText[i] == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(sqlText[i])
	}
	return sb.String()
}

func scanTask(rows *sql.Rows) (models.Task, error) {
	var (
		task        models.Task
		description sql.NullString
		status      sql.NullString
		tags        sql.NullString
		created     sql.NullFloat64
		updated     sql.NullFloat64
		dueDate     sql.NullString
		assignedTo  sql.NullString
		project     sql.NullString
		estimate    sql.NullFloat64
	)

	if err := rows.Scan(&task.ID, &task.Title, &description, &status, &task.Priority,
		&tags, &created, &updated, &dueDate, &assignedTo, &project, &estimate); err != nil {
		return task, err
	}

	task.Description = description.String
	task.Status = status.String
	task.Created = created.Float64
	task.Updated = updated.Float64
	task.DueDate = dueDate.String
	task.AssignedTo = assignedTo.String
	task.Project = project.String
	task.Estimate = estimate.Float64

	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &task.Tags); err != nil {
			return task, fmt.Errorf("malformed tags for task %d: %w", task.ID, err)
		}
	}
	return task, nil
}
