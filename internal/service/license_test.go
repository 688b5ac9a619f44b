package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedge/tradedge/internal/domain"
)

func TestLicenseAddListDelete(t *testing.T) {
	t.Parallel()

	store := &memLicenseStore{}
	svc := NewLicenseService(store, nil, false, testLogger())
	ctx := context.Background()

	lic, err := svc.Add(ctx, "alice", "key-1")
	require.NoError(t, err)
	assert.NotEmpty(t, lic.ID)
	assert.Equal(t, "alice", lic.Name)

	_, err = svc.Add(ctx, "", "key-2")
	require.ErrorIs(t, err, domain.ErrValidation)

	licenses, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, licenses, 1)

	require.NoError(t, svc.Delete(ctx, lic.ID))

	err = svc.Delete(ctx, lic.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	licenses, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, licenses)
}

func TestBroadcastDisabledOnlyAcknowledges(t *testing.T) {
	t.Parallel()

	store := &memLicenseStore{licenses: []domain.License{
		{ID: "a", Name: "alice", LicenseKey: "key-1"},
	}}
	sender := &fakeSender{}
	svc := NewLicenseService(store, sender, false, testLogger())

	result, err := svc.Broadcast(context.Background(), "license={license}")
	require.NoError(t, err)
	assert.Equal(t, "Data template received.", result.Status)
	assert.Empty(t, sender.payloads, "disabled broadcast must not contact the connector")
}

func TestBroadcastRendersTemplatePerLicense(t *testing.T) {
	t.Parallel()

	store := &memLicenseStore{licenses: []domain.License{
		{ID: "a", Name: "alice", LicenseKey: "key-1"},
		{ID: "b", Name: "bob", LicenseKey: "key-2"},
	}}
	sender := &fakeSender{}
	svc := NewLicenseService(store, sender, true, testLogger())

	result, err := svc.Broadcast(context.Background(), "license={license},buy")
	require.NoError(t, err)

	assert.Equal(t, []string{"license=key-1,buy", "license=key-2,buy"}, sender.payloads)
	assert.Equal(t, "Sent 2 requests successfully.", result.Status)
	assert.Len(t, result.Success, 2)
	assert.Empty(t, result.Errors)
}

func TestBroadcastCollectsSendErrors(t *testing.T) {
	t.Parallel()

	store := &memLicenseStore{licenses: []domain.License{
		{ID: "a", Name: "alice", LicenseKey: "key-1"},
	}}
	sender := &fakeSender{fail: errors.New("connector down")}
	svc := NewLicenseService(store, sender, true, testLogger())

	result, err := svc.Broadcast(context.Background(), "x")
	require.NoError(t, err, "individual send failures do not fail the broadcast")
	assert.Equal(t, "Sent 0 requests successfully. 1 errors occurred.", result.Status)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "connector down", result.Errors[0].Status)
}
