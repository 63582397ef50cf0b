package storage

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

func TestParseListQuery_Reserved(t *testing.T) {
	values, err := url.ParseQuery("fields=name,description&offset=10&limit=5&sort=-name,id")
	require.NoError(t, err)

	q, err := ParseListQuery(values)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"name", "description", "id", "href"}, q.Options.Projection)
	assert.Equal(t, int64(10), q.Options.Skip)
	assert.Equal(t, int64(5), q.Options.Limit)
	require.Len(t, q.Options.Sort, 2)
	assert.Equal(t, SortField{Field: "name", Desc: true}, q.Options.Sort[0])
	assert.Equal(t, SortField{Field: "id"}, q.Options.Sort[1])
	assert.Empty(t, q.Criteria)
}

func TestParseListQuery_EqualityFilters(t *testing.T) {
	values, err := url.ParseQuery("lifecycleStatus=Active&version=2&validFor=true&limit=3")
	require.NoError(t, err)

	q, err := ParseListQuery(values)
	require.NoError(t, err)

	assert.Equal(t, "Active", q.Criteria["lifecycleStatus"])
	assert.Equal(t, float64(2), q.Criteria["version"])
	assert.Equal(t, true, q.Criteria["validFor"])
	assert.NotContains(t, q.Criteria, "limit")
}

func TestParseListQuery_FilterExpression(t *testing.T) {
	values := url.Values{"filter": []string{`{"lifecycleStatus":"Launched"}`}}

	q, err := ParseListQuery(values)
	require.NoError(t, err)
	assert.Equal(t, "Launched", q.Criteria["lifecycleStatus"])
}

func TestParseListQuery_InvalidFilter(t *testing.T) {
	values := url.Values{"filter": []string{`{not-json`}}

	_, err := ParseListQuery(values)
	assert.ErrorIs(t, err, model.ErrInvalidQuery)
}

func TestParseQueryString(t *testing.T) {
	q, err := ParseQueryString("eventType=CatalogCreationNotification&fields=eventId")
	require.NoError(t, err)
	assert.Equal(t, "CatalogCreationNotification", q.Criteria["eventType"])
	assert.Contains(t, q.Options.Projection, "eventId")

	// Empty query selects everything.
	q, err = ParseQueryString("")
	require.NoError(t, err)
	assert.Empty(t, q.Criteria)
	assert.Empty(t, q.Options.Projection)
}

func TestParseQueryString_Invalid(t *testing.T) {
	_, err := ParseQueryString("a=%zz")
	assert.ErrorIs(t, err, model.ErrInvalidQuery)
}
