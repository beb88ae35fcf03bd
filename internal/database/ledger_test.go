package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedger_EmptyDSNReturnsNilWithoutError(t *testing.T) {
	l, err := NewLedger(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, l)
}

func TestNilLedger_MethodsAreNoOps(t *testing.T) {
	var l *Ledger

	assert.NoError(t, l.Start(context.Background(), "octo/harvest"))
	assert.NoError(t, l.Finish(context.Background(), "octo/harvest", RunLoaded, 10, 20, nil))
	assert.NoError(t, l.Finish(context.Background(), "octo/harvest", RunFailed, 0, 0, errors.New("clone failed")))
	assert.NoError(t, l.RecordTokenExhaustion(context.Background(), "octo/harvest"))

	// Close must not panic on a nil receiver.
	l.Close()
}

func TestRunStatusConstants(t *testing.T) {
	assert.Equal(t, RunStatus("queued"), RunQueued)
	assert.Equal(t, RunStatus("running"), RunRunning)
	assert.Equal(t, RunStatus("loaded"), RunLoaded)
	assert.Equal(t, RunStatus("failed"), RunFailed)
}
