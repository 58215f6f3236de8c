package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileTaskPayload(t *testing.T) {
	day := time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)
	task, opts, err := NewReconcileTask("prov-1", day)
	require.NoError(t, err)
	assert.Equal(t, TypeReconcileDay, task.Type())
	assert.Len(t, opts, 3)
	assert.JSONEq(t, `{"providerId":"prov-1","date":"2026-03-12"}`, string(task.Payload()))

	providerID, got, err := ParseReconcilePayload(task.Payload())
	require.NoError(t, err)
	assert.Equal(t, "prov-1", providerID)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), got)
}

func TestParseReconcilePayloadRejectsGarbage(t *testing.T) {
	_, _, err := ParseReconcilePayload([]byte(`not json`))
	assert.Error(t, err)
	_, _, err = ParseReconcilePayload([]byte(`{"date":"2026-03-12"}`))
	assert.Error(t, err)
	_, _, err = ParseReconcilePayload([]byte(`{"providerId":"p","date":"tomorrow"}`))
	assert.Error(t, err)
}
