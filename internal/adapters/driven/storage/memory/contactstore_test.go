package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warmpath/scout-cli/internal/core/domain"
)

func TestContactStore_FindByCompany(t *testing.T) {
	store := NewContactStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Contact{ID: "c1", Name: "Ada", CurrentCompany: "Acme Corp."}))
	require.NoError(t, store.Save(ctx, domain.Contact{ID: "c2", Name: "Grace", CurrentCompany: "acme"}))
	require.NoError(t, store.Save(ctx, domain.Contact{ID: "c3", Name: "Linus", CurrentCompany: "Globex"}))

	// Legal suffixes and case fold away during matching.
	found, err := store.FindByCompany(ctx, "ACME, Inc.")
	require.NoError(t, err)
	require.Len(t, found, 2)

	found, err = store.FindByCompany(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestContactStore_ListNewestFirst(t *testing.T) {
	store := NewContactStore()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, store.Save(ctx, domain.Contact{ID: "c1", Name: "Older", CreatedAt: base.Add(-time.Hour)}))
	require.NoError(t, store.Save(ctx, domain.Contact{ID: "c2", Name: "Newer", CreatedAt: base}))

	contacts, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Newer", contacts[0].Name)

	contacts, err = store.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, contacts, 1)
}

func TestContactStore_SaveOverwrites(t *testing.T) {
	store := NewContactStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Contact{ID: "c1", Name: "Ada", CurrentCompany: "Acme"}))
	require.NoError(t, store.Save(ctx, domain.Contact{ID: "c1", Name: "Ada Lovelace", CurrentCompany: "Acme"}))

	contacts, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Ada Lovelace", contacts[0].Name)
}
