package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedge/tradedge/internal/domain"
)

func TestLicenseStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "licenses.json")
	store, err := NewLicenseStore(path, testLogger())
	require.NoError(t, err)

	ctx := context.Background()

	licenses, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, licenses)

	want := []domain.License{
		{ID: "a", Name: "alice", LicenseKey: "key-1"},
		{ID: "b", Name: "bob", LicenseKey: "key-2"},
	}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLicenseStoreToleratesNonListPayload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "licenses.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"a list"}`), 0o644))

	store, err := NewLicenseStore(path, testLogger())
	require.NoError(t, err)

	licenses, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, licenses)
}

func TestLicenseStoreFailsOnInvalidJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "licenses.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{`), 0o644))

	store, err := NewLicenseStore(path, testLogger())
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrStorage)
}
