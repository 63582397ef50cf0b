package model

import (
	"strings"

	"github.com/google/uuid"
)

// Resource is a user facing domain entity, represented as a JSON object.
// Domain attributes are passed through as-is; the service only injects
// the reserved fields below.
//
//	"id" is the server generated identifier, immutable after creation.
//	"href" is the server computed resource locator, derived from "id".
//	"@type" tags the resource type when absent from the payload.
//
// Fields whose key starts with "_" are internal (service group, compiled
// subscription filters, the store's own "_id") and must never be returned
// to clients.
type Resource map[string]interface{}

// InternalPrefix marks fields that are stripped from all API responses.
const InternalPrefix = "_"

func (r Resource) GetID() string {
	if id, ok := r["id"].(string); ok {
		return id
	}
	return ""
}

func (r Resource) SetID(id string) {
	r["id"] = id
}

// GenerateIDIfEmpty assigns a fresh UUID when the resource has no id yet.
func (r Resource) GenerateIDIfEmpty() {
	if r.GetID() == "" {
		r["id"] = uuid.New().String()
	}
}

func (r Resource) GetHref() string {
	if href, ok := r["href"].(string); ok {
		return href
	}
	return ""
}

// SetHref recomputes the resource locator from the API root and the id.
// The href is always derived, never trusted from input.
func (r Resource) SetHref(apiRoot string) {
	r["href"] = strings.TrimSuffix(apiRoot, "/") + "/" + r.GetID()
}

// SetTypeIfEmpty tags the resource with its schema type when the payload
// did not carry one.
func (r Resource) SetTypeIfEmpty(resourceType string) {
	if _, ok := r["@type"]; !ok {
		r["@type"] = resourceType
	}
}

// Copy returns a deep copy of the resource. Nested maps and slices are
// copied recursively so callers can mutate the result freely.
func (r Resource) Copy() Resource {
	if r == nil {
		return nil
	}
	return Resource(copyValue(map[string]interface{}(r)).(map[string]interface{}))
}

// Clean returns a copy of the resource with every internal field removed,
// recursively. The receiver is not mutated.
func (r Resource) Clean() Resource {
	if r == nil {
		return nil
	}
	return Resource(cleanValue(map[string]interface{}(r)).(map[string]interface{}))
}

// CleanAll cleans a list of resources.
func CleanAll(list []Resource) []Resource {
	out := make([]Resource, 0, len(list))
	for _, r := range list {
		out = append(out, r.Clean())
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case Resource:
		return copyValue(map[string]interface{}(val))
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}

func cleanValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			if strings.HasPrefix(k, InternalPrefix) {
				continue
			}
			out[k] = cleanValue(item)
		}
		return out
	case Resource:
		return cleanValue(map[string]interface{}(val))
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cleanValue(item)
		}
		return out
	default:
		return v
	}
}

// LowerCamel lowercases the first rune of a type name, producing the key
// used inside event envelopes ("Catalog" -> "catalog").
func LowerCamel(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
