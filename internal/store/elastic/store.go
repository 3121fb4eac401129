// internal/store/elastic/store.go
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cloudtask/internal/common/database"
	stderrors "cloudtask/internal/common/errors"
	"cloudtask/internal/common/logger"
	"cloudtask/internal/models"
	"cloudtask/internal/query"
	"cloudtask/internal/store"
)

// Store executes task searches against an Elasticsearch index. Tags are a
// native keyword array there, so membership still translates to one term
// filter per element to keep the AND-of-elements semantics every backend
// shares.
type Store struct {
	es    *database.ElasticsearchClient
	index string
	log   logger.Logger
}

func New(es *database.ElasticsearchClient, index string, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{es: es, index: index, log: log}
}

// Contract describes the task index to the translator boundary. Columns
// and defaults match the SQL backend so queries behave identically.
func Contract() store.Contract {
	return store.Contract{
		Columns:      models.TaskFields,
		MultiValued:  models.MultiValuedFields,
		DefaultOrder: models.DefaultOrder(),
		DefaultLimit: models.DefaultLimit,
	}
}

// Search renders the filter as a bool query and runs it.
func (s *Store) Search(ctx context.Context, f *query.Filter) ([]models.Task, error) {
	body, err := BuildSearchBody(f, Contract())
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, stderrors.NewSearchError(err)
	}

	s.log.Debug("executing task search", map[string]interface{}{
		"index": s.index,
		"body":  string(payload),
	})

	res, err := s.es.Client.Search(
		s.es.Client.Search.WithContext(ctx),
		s.es.Client.Search.WithIndex(s.index),
		s.es.Client.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, stderrors.NewSearchError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, stderrors.NewSearchError(fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.Task `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, stderrors.NewSearchError(fmt.Errorf("malformed search response: %w", err))
	}

	tasks := make([]models.Task, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		tasks = append(tasks, hit.Source)
	}
	return tasks, nil
}

// BuildSearchBody turns a filter into an Elasticsearch request body: a bool
// query with term/terms/range/exists clauses, a sort list, and a size.
func BuildSearchBody(f *query.Filter, contract store.Contract) (map[string]interface{}, error) {
	if contract.DefaultLimit <= 0 || len(contract.DefaultOrder) == 0 {
		return nil, &store.TranslationError{Msg: "storage contract requires a default order and limit"}
	}

	filterClauses := []interface{}{}
	mustNotClauses := []interface{}{}

	for _, field := range f.FieldNames() {
		if len(contract.Columns) > 0 && !contract.Columns[field] {
			return nil, &store.TranslationError{Msg: fmt.Sprintf("unknown field %q", field)}
		}

		cons := f.Fields[field]
		rangeBounds := map[string]interface{}{}

		for _, op := range query.Operators() {
			value, ok := cons[op]
			if !ok {
				continue
			}

			if contract.MultiValued[field] {
				if op != query.OpIn {
					return nil, &store.TranslationError{
						Msg: fmt.Sprintf("operator %q not supported on multi-valued field %q", op, field),
					}
				}
				elems, err := listValue(field, value)
				if err != nil {
					return nil, err
				}
				for _, e := range elems {
					filterClauses = append(filterClauses, map[string]interface{}{
						"term": map[string]interface{}{field: e},
					})
				}
				continue
			}

			switch op {
			case query.OpEq:
				if value == nil {
					mustNotClauses = append(mustNotClauses, existsClause(field))
					continue
				}
				filterClauses = append(filterClauses, map[string]interface{}{
					"term": map[string]interface{}{field: value},
				})
			case query.OpNeq:
				if value == nil {
					filterClauses = append(filterClauses, existsClause(field))
					continue
				}
				mustNotClauses = append(mustNotClauses, map[string]interface{}{
					"term": map[string]interface{}{field: value},
				})
			case query.OpGt, query.OpGte, query.OpLt, query.OpLte:
				rangeBounds[string(op)] = value
			case query.OpIn:
				elems, err := listValue(field, value)
				if err != nil {
					return nil, err
				}
				filterClauses = append(filterClauses, map[string]interface{}{
					"terms": map[string]interface{}{field: elems},
				})
			case query.OpNotIn:
				elems, err := listValue(field, value)
				if err != nil {
					return nil, err
				}
				mustNotClauses = append(mustNotClauses, map[string]interface{}{
					"terms": map[string]interface{}{field: elems},
				})
			}
		}

		if len(rangeBounds) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{field: rangeBounds},
			})
		}
	}

	boolQuery := map[string]interface{}{}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}
	if len(mustNotClauses) > 0 {
		boolQuery["must_not"] = mustNotClauses
	}
	if len(boolQuery) == 0 {
		boolQuery["must"] = []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}

	order := f.Order
	if len(order) == 0 {
		order = contract.DefaultOrder
	}
	sortClauses := make([]map[string]interface{}, len(order))
	for i, o := range order {
		dir := query.DirAsc
		if strings.EqualFold(o.Direction, query.DirDesc) {
			dir = query.DirDesc
		}
		sortClauses[i] = map[string]interface{}{o.Field: dir}
	}

	limit := f.Limit
	if limit <= 0 {
		limit = contract.DefaultLimit
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  sortClauses,
		"size":  limit,
	}, nil
}

func existsClause(field string) map[string]interface{} {
	return map[string]interface{}{
		"exists": map[string]interface{}{"field": field},
	}
}

func listValue(field string, value interface{}) ([]string, error) {
	elems, ok := value.([]string)
	if !ok {
		return nil, &store.TranslationError{Msg: fmt.Sprintf("field %q requires a list value", field)}
	}
	if len(elems) == 0 {
		return nil, &store.TranslationError{Msg: fmt.Sprintf("field %q has an empty list value", field)}
	}
	return elems, nil
}
