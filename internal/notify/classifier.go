// Package notify implements change classification and best-effort
// webhook fan-out for mutated resources.
package notify

import (
	"net/http"
	"reflect"

	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

// Classify determines the event type for a mutating operation. The type
// is composed from the resource type name, the change kind and the
// "Notification" suffix, e.g. "CatalogAttributeValueChangeNotification".
//
// PUT/PATCH default to AttributeValueChange and upgrade to StateChange
// when the diff against the previous state touches a field named "state"
// or "status" at any nesting level. Classification is a pure function of
// its inputs.
func Classify(resourceType, method string, newState, oldState model.Resource) string {
	eventType := resourceType
	switch method {
	case http.MethodPost:
		eventType += model.ChangeCreation
	case http.MethodDelete:
		eventType += model.ChangeRemove
	case http.MethodPut, http.MethodPatch:
		change := model.ChangeAttributeValue
		if oldState != nil {
			diff := Difference(newState, oldState)
			if touchesState(diff) {
				change = model.ChangeState
			}
		}
		eventType += change
	}
	return eventType + model.NotificationSuffix
}

// Difference computes a one-sided structural diff: for each key of object
// whose value differs from base (deep equality), the changed value is
// recorded; when both values are maps the comparison recurses and only
// the differing sub-fields appear. Keys present only in base are not
// reported — classification only needs to know which fields changed to
// new values.
func Difference(object, base map[string]interface{}) map[string]interface{} {
	diff := map[string]interface{}{}
	for key, value := range object {
		baseValue := base[key]
		if reflect.DeepEqual(value, baseValue) {
			continue
		}
		valueMap, vok := asMap(value)
		baseMap, bok := asMap(baseValue)
		if vok && bok {
			diff[key] = Difference(valueMap, baseMap)
		} else {
			diff[key] = value
		}
	}
	return diff
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch val := v.(type) {
	case map[string]interface{}:
		return val, true
	case model.Resource:
		return val, true
	default:
		return nil, false
	}
}

// touchesState reports whether the diff contains a key literally named
// "state" or "status" at any depth.
func touchesState(diff map[string]interface{}) bool {
	for key, value := range diff {
		if key == "state" || key == "status" {
			return true
		}
		if nested, ok := value.(map[string]interface{}); ok {
			if touchesState(nested) {
				return true
			}
		}
	}
	return false
}
