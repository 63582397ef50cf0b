// Package memory provides an in-memory storage.Store used by unit tests
// and standalone runs without a MongoDB deployment.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/tmforum-oda/reference-example-components/internal/storage"
	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

type store struct {
	mu          sync.RWMutex
	collections map[string][]model.Resource
}

// NewStore creates an empty in-memory store.
func NewStore() storage.Store {
	return &store{collections: make(map[string][]model.Resource)}
}

// NewProvider wraps an in-memory store as a storage.Provider.
func NewProvider() storage.Provider {
	return &provider{store: NewStore()}
}

type provider struct {
	store storage.Store
}

func (p *provider) Store() storage.Store { return p.store }

func (p *provider) Close(_ context.Context) error { return nil }

func (s *store) InsertOne(_ context.Context, collection string, doc model.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], doc.Copy())
	return nil
}

func (s *store) FindOne(_ context.Context, collection string, criteria storage.Criteria, opts *storage.FindOptions) (model.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.collections[collection] {
		if matches(doc, criteria) {
			return project(doc.Copy(), opts), nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *store) Find(_ context.Context, collection string, criteria storage.Criteria, opts *storage.FindOptions) ([]model.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Resource
	for _, doc := range s.collections[collection] {
		if matches(doc, criteria) {
			out = append(out, doc.Copy())
		}
	}

	if opts != nil && len(opts.Sort) > 0 {
		sortResources(out, opts.Sort)
	}
	if opts != nil && opts.Skip > 0 {
		if opts.Skip >= int64(len(out)) {
			out = nil
		} else {
			out = out[opts.Skip:]
		}
	}
	if opts != nil && opts.Limit > 0 && int64(len(out)) > opts.Limit {
		out = out[:opts.Limit]
	}

	for i, doc := range out {
		out[i] = project(doc, opts)
	}
	return out, nil
}

func (s *store) Count(_ context.Context, collection string, criteria storage.Criteria) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, doc := range s.collections[collection] {
		if matches(doc, criteria) {
			n++
		}
	}
	return n, nil
}

func (s *store) UpdateOne(_ context.Context, collection string, criteria storage.Criteria, patch model.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range s.collections[collection] {
		if matches(doc, criteria) {
			merged := doc.Copy()
			for k, v := range patch {
				merged[k] = v
			}
			s.collections[collection][i] = merged
			return nil
		}
	}
	return model.ErrNotFound
}

func (s *store) DeleteOne(_ context.Context, collection string, criteria storage.Criteria) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collections[collection]
	for i, doc := range docs {
		if matches(doc, criteria) {
			s.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (s *store) Close(_ context.Context) error {
	return nil
}

func matches(doc model.Resource, criteria storage.Criteria) bool {
	for k, want := range criteria {
		if !reflect.DeepEqual(doc[k], want) {
			return false
		}
	}
	return true
}

func project(doc model.Resource, opts *storage.FindOptions) model.Resource {
	if opts == nil || len(opts.Projection) == 0 {
		return doc
	}
	out := model.Resource{}
	for _, field := range opts.Projection {
		if v, ok := doc[field]; ok {
			out[field] = v
		}
	}
	return out
}

func sortResources(docs []model.Resource, fields []storage.SortField) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, f := range fields {
			c := compareValues(docs[i][f.Field], docs[j][f.Field])
			if c == 0 {
				continue
			}
			if f.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareValues(a, b interface{}) int {
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
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
