package study

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func makeCards(n int) []Card {
	cards := make([]Card, n)
	for i := range cards {
		cards[i] = Card{
			ID:         fmt.Sprintf("card-%d", i),
			Term:       fmt.Sprintf("term %d", i),
			Definition: fmt.Sprintf("definition %d", i),
		}
	}
	return cards
}

func mustSession(t *testing.T, n int, cfg Config) *Session {
	t.Helper()
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(1))
	}
	s, err := NewSession("test set", makeCards(n), t0, cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestNewSessionEmpty(t *testing.T) {
	_, err := NewSession("empty", nil, t0, Config{})
	assert.ErrorIs(t, err, ErrEmptySet)
}

func TestNewSessionNeutralPrior(t *testing.T) {
	s := mustSession(t, 3, Config{})
	for _, c := range s.Cards() {
		assert.Equal(t, InitialConfidence, c.Confidence)
		assert.Equal(t, t0, c.LastSeen)
	}
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Equal(t, 0, s.Streak())
}

func TestAnswerConfidenceClamping(t *testing.T) {
	s := mustSession(t, 1, Config{SpacedRepetition: true})

	// 50 → 70 → 90 → 100, then clamped.
	want := []int{70, 90, 100, 100, 100}
	for i, expected := range want {
		res, err := s.Answer(0, true, t0.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, expected, res.Confidence)
		assert.True(t, res.Confidence >= 0 && res.Confidence <= 100)
	}

	// 100 → 75 → 50 → 25 → 0, then clamped.
	want = []int{75, 50, 25, 0, 0}
	for _, expected := range want {
		res, err := s.Answer(0, false, t0)
		require.NoError(t, err)
		assert.Equal(t, expected, res.Confidence)
		assert.True(t, res.Confidence >= 0 && res.Confidence <= 100)
	}
}

func TestAnswerStreak(t *testing.T) {
	s := mustSession(t, 4, Config{})

	for i := 0; i < 7; i++ {
		_, err := s.Answer(i%4, true, t0)
		require.NoError(t, err)
	}
	assert.Equal(t, 7, s.Streak())
	assert.Equal(t, 7, s.CorrectCount())

	res, err := s.Answer(0, false, t0)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Streak)
	// correctCount keeps its total; only the streak resets.
	assert.Equal(t, 7, s.CorrectCount())
}

func TestAnswerUpdatesLastSeen(t *testing.T) {
	s := mustSession(t, 2, Config{})
	later := t0.Add(5 * time.Minute)

	_, err := s.Answer(1, false, later)
	require.NoError(t, err)

	card, err := s.Card(1)
	require.NoError(t, err)
	assert.Equal(t, later, card.LastSeen)
}

func TestAnswerBadIndex(t *testing.T) {
	s := mustSession(t, 2, Config{})
	_, err := s.Answer(2, true, t0)
	assert.ErrorIs(t, err, ErrCardIndex)
	_, err = s.Answer(-1, true, t0)
	assert.ErrorIs(t, err, ErrCardIndex)
}

func TestSequentialRotation(t *testing.T) {
	s := mustSession(t, 5, Config{AdvanceDelay: time.Millisecond})

	// Walk the rotation to the last card, waiting out each advance.
	for want := 1; want < 5; want++ {
		_, err := s.Answer(s.CurrentIndex(), true, t0)
		require.NoError(t, err)
		require.Eventually(t, func() bool {
			return s.CurrentIndex() == want
		}, time.Second, time.Millisecond)
	}

	// Wrap-around: index 4 of 5 → 0.
	assert.Equal(t, 4, s.CurrentIndex())
	assert.Equal(t, 0, s.NextCardIndex())
}

func TestWeightedPoolBottomForty(t *testing.T) {
	s := mustSession(t, 5, Config{SpacedRepetition: true})

	// Spread the confidences: 0, 25, 50, 70, 90.
	_, err := s.Answer(0, false, t0)
	require.NoError(t, err)
	_, err = s.Answer(0, false, t0)
	require.NoError(t, err)
	_, err = s.Answer(1, false, t0)
	require.NoError(t, err)
	_, err = s.Answer(3, true, t0)
	require.NoError(t, err)
	_, err = s.Answer(4, true, t0)
	require.NoError(t, err)
	_, err = s.Answer(4, true, t0)
	require.NoError(t, err)

	// floor(5*0.4) = 2: only the two lowest-confidence cards are eligible.
	for i := 0; i < 200; i++ {
		next := s.NextCardIndex()
		assert.Contains(t, []int{0, 1}, next)
	}
}

func TestWeightedPoolSingleCard(t *testing.T) {
	s := mustSession(t, 1, Config{SpacedRepetition: true})
	for i := 0; i < 20; i++ {
		assert.Equal(t, 0, s.NextCardIndex())
	}
}

func TestWeightedSelectionSeesFreshConfidence(t *testing.T) {
	s := mustSession(t, 2, Config{SpacedRepetition: true})

	// Missing card 1 drops it to 25, below card 0's 50. With a pool of
	// max(1, floor(2*0.4)) = 1 the next card must be the one just missed.
	res, err := s.Answer(1, false, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.NextIndex)
}

func TestMasteredCardLeavesPool(t *testing.T) {
	s := mustSession(t, 10, Config{SpacedRepetition: true})

	// Five straight correct answers clamp card 7 at 100 while the other
	// nine cards sit at 50; the bottom-40% pool can no longer contain it.
	for i := 0; i < 5; i++ {
		res, err := s.Answer(7, true, t0)
		require.NoError(t, err)
		if i >= 2 {
			assert.Equal(t, 100, res.Confidence)
		}
	}

	for i := 0; i < 200; i++ {
		assert.NotEqual(t, 7, s.NextCardIndex())
	}
}

func TestAggregateConfidence(t *testing.T) {
	s := mustSession(t, 2, Config{})
	assert.Equal(t, 50, s.AggregateConfidence())

	_, err := s.Answer(0, true, t0)
	require.NoError(t, err)
	// (70 + 50) / 2
	assert.Equal(t, 60, s.AggregateConfidence())

	_, err = s.Answer(1, false, t0)
	require.NoError(t, err)
	// mean of (70, 25) rounds to 48
	assert.Equal(t, 48, s.AggregateConfidence())
}

func TestShuffleKeepsConfidence(t *testing.T) {
	s := mustSession(t, 6, Config{AdvanceDelay: time.Millisecond})

	_, err := s.Answer(2, true, t0)
	require.NoError(t, err)

	before := map[string]int{}
	for _, c := range s.Cards() {
		before[c.ID] = c.Confidence
	}

	s.Shuffle()

	assert.Equal(t, 0, s.CurrentIndex())
	after := s.Cards()
	assert.Len(t, after, 6)
	for _, c := range after {
		assert.Equal(t, before[c.ID], c.Confidence)
	}
}

func TestCloseCancelsPendingAdvance(t *testing.T) {
	s := mustSession(t, 3, Config{AdvanceDelay: 10 * time.Millisecond})

	_, err := s.Answer(0, true, t0)
	require.NoError(t, err)
	s.Close()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, s.CurrentIndex(), "advance fired after teardown")

	_, err = s.Answer(0, true, t0)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestCloseIdempotent(t *testing.T) {
	s := mustSession(t, 1, Config{})
	s.Close()
	s.Close()
}
