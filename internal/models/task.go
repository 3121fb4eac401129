// internal/models/task.go
package models

import (
	"time"

	"cloudtask/internal/query"
)

// Task is the canonical task record. Created and Updated are Unix epoch
// seconds as returned by the service; DueDate stays a date string.
type Task struct {
	ID          int64    `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Created     float64  `json:"created,omitempty"`
	Updated     float64  `json:"updated,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	AssignedTo  string   `json:"assigned_to,omitempty"`
	Project     string   `json:"project,omitempty"`
	Estimate    float64  `json:"estimate,omitempty"`
}

// TaskFields is the set of queryable task attributes.
var TaskFields = map[string]bool{
	"id": true, "title": true, "description": true, "status": true,
	"priority": true, "tags": true, "created": true, "updated": true,
	"due_date": true, "assigned_to": true, "project": true, "estimate": true,
}

// TaskAliases rewrites query shorthand to canonical field names.
var TaskAliases = map[string]string{
	"desc":     "description",
	"prio":     "priority",
	"assignee": "assigned_to",
}

// TaskMultipliers scales units on entry: estimates are typed in hours and
// stored in minutes.
var TaskMultipliers = map[string]float64{
	"estimate": 60,
}

// MultiValuedFields marks attributes stored as JSON-encoded lists.
var MultiValuedFields = map[string]bool{
	"tags": true,
}

// FieldContext assembles the parser context for task queries.
func FieldContext() query.FieldContext {
	return query.FieldContext{
		Valid:       TaskFields,
		Aliases:     TaskAliases,
		Multipliers: TaskMultipliers,
	}
}

// DefaultOrder is the sort applied when a search names none.
func DefaultOrder() []query.OrderBy {
	return []query.OrderBy{
		{Field: "priority", Direction: query.DirDesc},
		{Field: "created", Direction: query.DirDesc},
	}
}

// DefaultLimit caps result sets when a search names no limit.
const DefaultLimit = 100

// Row flattens a task into the attribute map shape consumed by in-memory
// predicates and the display layer.
func (t Task) Row() map[string]interface{} {
	row := map[string]interface{}{
		"id":       t.ID,
		"title":    t.Title,
		"priority": t.Priority,
	}
	if t.Description != "" {
		row["description"] = t.Description
	}
	if t.Status != "" {
		row["status"] = t.Status
	}
	if len(t.Tags) > 0 {
		row["tags"] = t.Tags
	}
	if t.Created != 0 {
		row["created"] = t.Created
	}
	if t.Updated != 0 {
		row["updated"] = t.Updated
	}
	if t.DueDate != "" {
		row["due_date"] = t.DueDate
	}
	if t.AssignedTo != "" {
		row["assigned_to"] = t.AssignedTo
	}
	if t.Project != "" {
		row["project"] = t.Project
	}
	if t.Estimate != 0 {
		row["estimate"] = t.Estimate
	}
	return row
}

// FormatTimestamp renders an epoch-seconds value for table output.
func FormatTimestamp(ts float64) string {
	return time.Unix(int64(ts), 0).Format("2006-01-02 15:04:05")
}
