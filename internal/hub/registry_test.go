package hub

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmforum-oda/reference-example-components/internal/storage/memory"
	"github.com/tmforum-oda/reference-example-components/pkg/model"
)

const hubPath = "/acme/productCatalogManagement/v5/hub"

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry(memory.NewStore(), nil)
	ctx := context.Background()

	created, err := reg.Register(ctx, hubPath, model.Resource{
		"callback": "http://listener.local/callback",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.GetID())
	assert.Equal(t, "http://listener.local/callback", created["callback"])
	assert.Equal(t, "", created["query"])

	// Internal fields never leave the registry.
	assert.NotContains(t, created, "_serviceGroup")
	assert.NotContains(t, created, "_query")

	got, err := reg.Get(ctx, hubPath, created.GetID())
	require.NoError(t, err)
	assert.Equal(t, created["callback"], got["callback"])
	assert.NotContains(t, got, "_serviceGroup")
	assert.NotContains(t, got, "_query")
}

func TestRegistry_RegisterRejectsEmptyPayload(t *testing.T) {
	reg := NewRegistry(memory.NewStore(), nil)

	_, err := reg.Register(context.Background(), hubPath, nil)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	_, err = reg.Register(context.Background(), hubPath, model.Resource{"query": "a=b"})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}

func TestRegistry_RegisterInvalidQuery(t *testing.T) {
	reg := NewRegistry(memory.NewStore(), nil)

	_, err := reg.Register(context.Background(), hubPath, model.Resource{
		"callback": "http://listener.local/callback",
		"query":    "a=%zz",
	})
	assert.ErrorIs(t, err, model.ErrInvalidQuery)
}

func TestRegistry_RegisterQueryValidator(t *testing.T) {
	validatorErr := errors.New("bad expression")
	reg := NewRegistry(memory.NewStore(), nil, WithQueryValidator(func(query string) error {
		if query != "" {
			return validatorErr
		}
		return nil
	}))

	_, err := reg.Register(context.Background(), hubPath, model.Resource{
		"callback": "http://listener.local/callback",
		"query":    "eventType=X",
	})
	assert.ErrorIs(t, err, model.ErrInvalidQuery)

	_, err = reg.Register(context.Background(), hubPath, model.Resource{
		"callback": "http://listener.local/callback",
	})
	assert.NoError(t, err)
}

func TestRegistry_DeleteScopedByServiceGroup(t *testing.T) {
	reg := NewRegistry(memory.NewStore(), nil)
	ctx := context.Background()

	created, err := reg.Register(ctx, "/acme/productCatalogManagement/v5/hub", model.Resource{
		"callback": "http://listener.local/callback",
	})
	require.NoError(t, err)
	id := created.GetID()

	// A different API version derives a different service group; the hub
	// is neither visible nor deletable from there.
	otherPath := "/acme/productCatalogManagement/v4/hub"
	_, err = reg.Get(ctx, otherPath, id)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, reg.Delete(ctx, otherPath, id), model.ErrNotFound)

	require.NoError(t, reg.Delete(ctx, hubPath, id))
	_, err = reg.Get(ctx, hubPath, id)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRegistry_FindByServiceGroup(t *testing.T) {
	reg := NewRegistry(memory.NewStore(), nil)
	ctx := context.Background()

	for _, cb := range []string{"http://a.local/cb", "http://b.local/cb"} {
		_, err := reg.Register(ctx, hubPath, model.Resource{"callback": cb})
		require.NoError(t, err)
	}
	_, err := reg.Register(ctx, "/other/api/v1/hub", model.Resource{"callback": "http://c.local/cb"})
	require.NoError(t, err)

	subs, err := reg.FindByServiceGroup(ctx, "acme/productCatalogManagement/v5")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	for _, sub := range subs {
		assert.NotEmpty(t, sub.ID)
		assert.Contains(t, sub.Callback, ".local/cb")
	}
}
