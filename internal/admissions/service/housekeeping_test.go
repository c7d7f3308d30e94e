package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	insertToken(t, st, "fresh", time.Now().UTC())
	insertToken(t, st, "stale-1", time.Now().UTC().Add(-2*time.Hour))
	insertToken(t, st, "stale-2", time.Now().UTC().Add(-26*time.Hour))

	svc := NewHousekeepingService(st, slog.Default(), time.Minute, time.Hour)

	deleted, err := svc.Sweep(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	count, err := st.Tokens().CountTokens(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	// Idempotent: nothing left to sweep.
	deleted, err = svc.Sweep(ctx)
	require.NoError(t, err)
	require.Zero(t, deleted)
}
