package intervention

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/studypulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	engine, err := NewEngine(clock)
	require.NoError(t, err)
	return engine, clock
}

func noContext() domain.InterventionContext {
	return domain.InterventionContext{}
}

func TestValidateTablesCoversAllLabels(t *testing.T) {
	require.NoError(t, validateTables())
	for _, label := range domain.Labels() {
		assert.Contains(t, catalog, label)
		assert.Contains(t, cooldowns, label)
	}
}

func TestUnknownEmotionYieldsNothing(t *testing.T) {
	engine, _ := newTestEngine(t)
	assert.Nil(t, engine.GetIntervention("ecstatic", noContext()))
}

func TestCooldownEnforcement(t *testing.T) {
	engine, clock := newTestEngine(t)

	first := engine.GetIntervention(domain.Confused, noContext())
	require.NotNil(t, first)
	require.NotNil(t, first.Message)

	// Within the 30s confused cooldown: nothing.
	clock.Advance(29 * time.Second)
	assert.Nil(t, engine.GetIntervention(domain.Confused, noContext()))

	// Past the cooldown: a message again.
	clock.Advance(1 * time.Second)
	second := engine.GetIntervention(domain.Confused, noContext())
	require.NotNil(t, second)
	require.NotNil(t, second.Message)
}

func TestCooldownsAreIndependentPerEmotion(t *testing.T) {
	engine, _ := newTestEngine(t)

	require.NotNil(t, engine.GetIntervention(domain.Confused, noContext()))
	// A different emotion is not blocked by confused's cooldown.
	assert.NotNil(t, engine.GetIntervention(domain.Bored, noContext()))
}

func TestMessageRotationWrapsAround(t *testing.T) {
	engine, clock := newTestEngine(t)
	messages := catalog[domain.Curious].Messages

	var got []string
	for i := 0; i < len(messages)+2; i++ {
		iv := engine.GetIntervention(domain.Curious, noContext())
		require.NotNil(t, iv, "iteration %d", i)
		got = append(got, *iv.Message)
		clock.Advance(cooldowns[domain.Curious])
	}

	for i, msg := range got {
		assert.Equal(t, messages[i%len(messages)], msg, "iteration %d", i)
	}
}

func TestFocusedSilentMarker(t *testing.T) {
	engine, clock := newTestEngine(t)

	first := engine.GetIntervention(domain.Focused, noContext())
	require.NotNil(t, first)
	assert.True(t, first.Silent)
	assert.Nil(t, first.Message)
	assert.Equal(t, domain.TypeSuppress, first.Type)
	assert.Equal(t, []string{"track_focus_duration"}, first.Actions)

	// Within the 10 minute gate: nothing, even though the generic 120s
	// cooldown would long have expired.
	clock.Advance(599 * time.Second)
	assert.Nil(t, engine.GetIntervention(domain.Focused, noContext()))

	clock.Advance(1 * time.Second)
	again := engine.GetIntervention(domain.Focused, noContext())
	require.NotNil(t, again)
	assert.True(t, again.Silent)
}

func TestFocusedMarkerStaysOutOfSessionLog(t *testing.T) {
	engine, _ := newTestEngine(t)

	require.NotNil(t, engine.GetIntervention(domain.Focused, noContext()))
	stats := engine.SessionStats()
	assert.Zero(t, stats.TotalInterventions)
	assert.Empty(t, stats.InterventionCounts)
}

func TestTopicAttachedToHintsOnly(t *testing.T) {
	engine, _ := newTestEngine(t)
	ictx := domain.InterventionContext{Topic: "recursion"}

	hint := engine.GetIntervention(domain.Confused, ictx)
	require.NotNil(t, hint)
	assert.Equal(t, "recursion", hint.Topic)

	// bored produces a challenge, not a hint: no topic.
	challenge := engine.GetIntervention(domain.Bored, ictx)
	require.NotNil(t, challenge)
	assert.Empty(t, challenge.Topic)
}

func TestLongStudySuffix(t *testing.T) {
	engine, _ := newTestEngine(t)
	ictx := domain.InterventionContext{TimeStudyingMinutes: 50}

	iv := engine.GetIntervention(domain.Frustrated, ictx)
	require.NotNil(t, iv)
	assert.Contains(t, *iv.Message, "50 minutes")

	// At the threshold exactly, no suffix.
	engine2, _ := newTestEngine(t)
	iv = engine2.GetIntervention(domain.Frustrated, domain.InterventionContext{TimeStudyingMinutes: 45})
	require.NotNil(t, iv)
	assert.NotContains(t, *iv.Message, "minutes")

	// Types outside simplify/break never get the suffix.
	iv = engine.GetIntervention(domain.Curious, ictx)
	require.NotNil(t, iv)
	assert.NotContains(t, *iv.Message, "50 minutes")
}

func TestSessionStats(t *testing.T) {
	engine, clock := newTestEngine(t)

	require.NotNil(t, engine.GetIntervention(domain.Confused, noContext()))
	clock.Advance(time.Minute)
	require.NotNil(t, engine.GetIntervention(domain.Confused, noContext()))
	require.NotNil(t, engine.GetIntervention(domain.Anxious, noContext()))

	stats := engine.SessionStats()
	assert.Equal(t, 3, stats.TotalInterventions)
	assert.Equal(t, 2, stats.EmotionDistribution[domain.Confused])
	assert.Equal(t, 1, stats.EmotionDistribution[domain.Anxious])
	assert.Equal(t, 2, stats.InterventionCounts[domain.Confused])
}

func TestResetSessionClearsEverything(t *testing.T) {
	engine, _ := newTestEngine(t)

	require.NotNil(t, engine.GetIntervention(domain.Confused, noContext()))
	// Still cooling down.
	require.Nil(t, engine.GetIntervention(domain.Confused, noContext()))

	engine.ResetSession()

	stats := engine.SessionStats()
	assert.Zero(t, stats.TotalInterventions)

	// Cooldown cleared: immediately eligible again, rotation restarted.
	iv := engine.GetIntervention(domain.Confused, noContext())
	require.NotNil(t, iv)
	assert.Equal(t, catalog[domain.Confused].Messages[0], *iv.Message)
}

func TestRotationCountersSurviveCooldownBlocks(t *testing.T) {
	engine, clock := newTestEngine(t)
	messages := catalog[domain.Confused].Messages

	for i := 0; i < 3; i++ {
		iv := engine.GetIntervention(domain.Confused, noContext())
		require.NotNil(t, iv)
		assert.Equal(t, messages[i], *iv.Message, fmt.Sprintf("rotation step %d", i))

		// Blocked requests in between must not advance the rotation.
		assert.Nil(t, engine.GetIntervention(domain.Confused, noContext()))
		clock.Advance(30 * time.Second)
	}
}
