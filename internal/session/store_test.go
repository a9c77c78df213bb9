package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
	"github.com/apper-apps/tekxora-tools-chip/internal/wizard"
)

var gameTool = domain.ToolDescriptor{
	Key:             domain.ToolGame,
	Cost:            domain.CostRange{Min: 40, Max: 60},
	GuestTrialLimit: 5,
	Steps: []domain.StepDescriptor{{Fields: []domain.FieldDescriptor{
		{Name: "gameName", Kind: domain.FieldText, Required: true},
	}}},
}

func newTestStore(ttl time.Duration) (*Store, *time.Time) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(ttl)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestWizardPersistsAcrossGets(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	_, err := s.Get("guest:a").Wizard(gameTool, func(w *wizard.Wizard) error {
		return w.Set("gameName", domain.TextValue("Pong"))
	})
	require.NoError(t, err)

	snap, err := s.Get("guest:a").Wizard(gameTool, nil)
	require.NoError(t, err)
	assert.Equal(t, "Pong", snap.Fields.Text("gameName"))

	other, err := s.Get("guest:b").Wizard(gameTool, nil)
	require.NoError(t, err)
	assert.Empty(t, other.Fields)
}

func TestWizardErrorStillReturnsSnapshot(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	snap, err := s.Get("k").Wizard(gameTool, func(w *wizard.Wizard) error { return w.Advance() })
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, 1, snap.Step)
}

func TestExpiredSessionStartsFresh(t *testing.T) {
	s, now := newTestStore(time.Minute)
	sess := s.Get("k")
	sess.SetResult(&domain.GenerationResult{ID: "r1", ToolKey: domain.ToolGame})

	*now = now.Add(30 * time.Second)
	_, ok := s.Get("k").Result(domain.ToolGame)
	assert.True(t, ok, "touch within ttl keeps the session")

	*now = now.Add(2 * time.Minute)
	_, ok = s.Get("k").Result(domain.ToolGame)
	assert.False(t, ok)
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	s, now := newTestStore(time.Minute)
	s.Get("old")
	*now = now.Add(45 * time.Second)
	s.Get("fresh")
	*now = now.Add(30 * time.Second)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestDiscardDropsWizardAndResult(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	sess := s.Get("k")
	_, err := sess.Wizard(gameTool, func(w *wizard.Wizard) error {
		return w.Set("gameName", domain.TextValue("Pong"))
	})
	require.NoError(t, err)
	sess.SetResult(&domain.GenerationResult{ID: "r1", ToolKey: domain.ToolGame})

	sess.Discard(domain.ToolGame)

	_, ok := sess.Result(domain.ToolGame)
	assert.False(t, ok)
	snap, err := sess.Wizard(gameTool, nil)
	require.NoError(t, err)
	assert.Empty(t, snap.Fields)
}
