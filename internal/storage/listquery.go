package storage

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/schema"

	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

// ListQuery is the store-neutral translation of a collection request:
// equality criteria plus projection/paging/sort options. It is also the
// cached "_query" representation persisted on hub registrations.
type ListQuery struct {
	Criteria Criteria    `json:"criteria"`
	Options  FindOptions `json:"options"`
}

// listParams are the reserved query parameters of list operations.
// "before"/"after" cursors are accepted for interface compatibility but
// carry offset semantics only.
type listParams struct {
	Fields string `schema:"fields"`
	Offset int64  `schema:"offset"`
	Limit  int64  `schema:"limit"`
	Sort   string `schema:"sort"`
	Filter string `schema:"filter"`
	Before string `schema:"before"`
	After  string `schema:"after"`
}

var reservedParams = map[string]bool{
	"fields": true,
	"offset": true,
	"limit":  true,
	"sort":   true,
	"filter": true,
	"before": true,
	"after":  true,
}

// ParseListQuery translates HTTP query parameters into a ListQuery.
// Reserved parameters control projection and paging; every other
// parameter becomes an equality criterion. Returns model.ErrInvalidQuery
// when a reserved parameter or the filter expression cannot be parsed.
func ParseListQuery(values url.Values) (ListQuery, error) {
	var params listParams
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	if err := decoder.Decode(&params, values); err != nil {
		return ListQuery{}, fmt.Errorf("%w: %v", model.ErrInvalidQuery, err)
	}

	q := ListQuery{Criteria: Criteria{}}

	if params.Fields != "" {
		projection := splitNonEmpty(params.Fields, ",")
		// id and href are always part of a projected response.
		projection = appendMissing(projection, "id", "href")
		q.Options.Projection = projection
	}
	if params.Offset > 0 {
		q.Options.Skip = params.Offset
	}
	if params.Limit > 0 {
		q.Options.Limit = params.Limit
	}
	for _, field := range splitNonEmpty(params.Sort, ",") {
		if strings.HasPrefix(field, "-") {
			q.Options.Sort = append(q.Options.Sort, SortField{Field: field[1:], Desc: true})
		} else {
			q.Options.Sort = append(q.Options.Sort, SortField{Field: field})
		}
	}

	if params.Filter != "" {
		var extra map[string]interface{}
		if err := json.Unmarshal([]byte(params.Filter), &extra); err != nil {
			return ListQuery{}, fmt.Errorf("%w: invalid filter expression", model.ErrInvalidQuery)
		}
		for k, v := range extra {
			q.Criteria[k] = v
		}
	}

	for key, vals := range values {
		if reservedParams[key] || len(vals) == 0 {
			continue
		}
		q.Criteria[key] = coerceValue(vals[0])
	}

	return q, nil
}

// ParseQueryString translates a raw query-string filter (as supplied on a
// hub registration) into a ListQuery. The empty string selects everything.
func ParseQueryString(query string) (ListQuery, error) {
	values, err := url.ParseQuery(query)
	if err != nil {
		return ListQuery{}, fmt.Errorf("%w: %v", model.ErrInvalidQuery, err)
	}
	return ParseListQuery(values)
}

// coerceValue maps query parameter text to typed criteria values so that
// equality matching lines up with JSON document values.
func coerceValue(s string) interface{} {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func appendMissing(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
