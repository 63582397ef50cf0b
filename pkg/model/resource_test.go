package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_GenerateIDIfEmpty(t *testing.T) {
	r := Resource{"name": "X"}
	r.GenerateIDIfEmpty()
	first := r.GetID()
	require.NotEmpty(t, first)

	// A second call must not replace an existing id.
	r.GenerateIDIfEmpty()
	assert.Equal(t, first, r.GetID())
}

func TestResource_SetHref(t *testing.T) {
	r := Resource{"id": "42"}
	r.SetHref("/acme/productCatalogManagement/v5/catalog/")
	assert.Equal(t, "/acme/productCatalogManagement/v5/catalog/42", r.GetHref())
}

func TestResource_SetTypeIfEmpty(t *testing.T) {
	r := Resource{}
	r.SetTypeIfEmpty("Catalog")
	assert.Equal(t, "Catalog", r["@type"])

	r2 := Resource{"@type": "CustomCatalog"}
	r2.SetTypeIfEmpty("Catalog")
	assert.Equal(t, "CustomCatalog", r2["@type"])
}

func TestResource_Clean(t *testing.T) {
	r := Resource{
		"id":            "1",
		"_id":           "mongo-oid",
		"_serviceGroup": "a/b/v1",
		"nested": map[string]interface{}{
			"_hidden": true,
			"kept":    "yes",
		},
		"list": []interface{}{
			map[string]interface{}{"_secret": 1, "name": "n"},
		},
	}

	cleaned := r.Clean()

	assert.NotContains(t, cleaned, "_id")
	assert.NotContains(t, cleaned, "_serviceGroup")
	nested := cleaned["nested"].(map[string]interface{})
	assert.NotContains(t, nested, "_hidden")
	assert.Equal(t, "yes", nested["kept"])
	item := cleaned["list"].([]interface{})[0].(map[string]interface{})
	assert.NotContains(t, item, "_secret")

	// Original is untouched.
	assert.Contains(t, r, "_serviceGroup")
	assert.Contains(t, r["nested"].(map[string]interface{}), "_hidden")
}

func TestResource_Copy_IsDeep(t *testing.T) {
	r := Resource{
		"nested": map[string]interface{}{"k": "v"},
		"list":   []interface{}{"a"},
	}
	cp := r.Copy()
	cp["nested"].(map[string]interface{})["k"] = "changed"
	cp["list"].([]interface{})[0] = "b"

	assert.Equal(t, "v", r["nested"].(map[string]interface{})["k"])
	assert.Equal(t, "a", r["list"].([]interface{})[0])
}

func TestLowerCamel(t *testing.T) {
	assert.Equal(t, "catalog", LowerCamel("Catalog"))
	assert.Equal(t, "productOffering", LowerCamel("ProductOffering"))
	assert.Equal(t, "", LowerCamel(""))
}

func TestNewEventMessage(t *testing.T) {
	state := Resource{"id": "1", "name": "X"}
	msg := NewEventMessage("Catalog", "CatalogCreationNotification", state)

	assert.NotEmpty(t, msg.EventID())
	assert.NotEmpty(t, msg["eventTime"])
	assert.Equal(t, "CatalogCreationNotification", msg.EventType())

	event := msg["event"].(map[string]interface{})
	require.Contains(t, event, "catalog")
	assert.Equal(t, "X", event["catalog"].(map[string]interface{})["name"])
}
