package quota

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
	"github.com/apper-apps/tekxora-tools-chip/internal/store/memory"
)

func TestTracker(t *testing.T) {
	ctx := context.Background()
	tool := domain.ToolDescriptor{Key: "game", GuestTrialLimit: 2}
	tr := NewTracker(memory.New())

	remaining, err := tr.Remaining(ctx, "g1", tool)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	for i := 1; i <= 2; i++ {
		n, err := tr.Consume(ctx, "g1", tool)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	_, err = tr.Consume(ctx, "g1", tool)
	assert.True(t, errors.Is(err, domain.ErrQuotaExceeded))

	rec, err := tr.Record(ctx, "g1", tool)
	require.NoError(t, err)
	assert.Equal(t, domain.GuestQuotaRecord{Scope: "g1", ToolKey: "game", AttemptsUsed: 2}, rec)

	remaining, err = tr.Remaining(ctx, "g1", tool)
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestRemainingWithLoweredLimit(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(memory.New())
	_, err := tr.Consume(ctx, "g1", domain.ToolDescriptor{Key: "game", GuestTrialLimit: 5})
	require.NoError(t, err)
	_, err = tr.Consume(ctx, "g1", domain.ToolDescriptor{Key: "game", GuestTrialLimit: 5})
	require.NoError(t, err)

	remaining, err := tr.Remaining(ctx, "g1", domain.ToolDescriptor{Key: "game", GuestTrialLimit: 1})
	require.NoError(t, err)
	assert.Zero(t, remaining)
}
