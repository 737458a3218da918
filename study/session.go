// Package study implements the adaptive learning scheduler behind learn mode:
// per-card confidence tracking, confidence-weighted card selection, and the
// session state driving a single open-ended study loop.
package study

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// Confidence update rule. The penalty is deliberately larger than the gain so
// recently-missed cards sink faster than correct answers rise.
const (
	InitialConfidence = 50
	confidenceGain    = 20
	confidencePenalty = 25
)

// DefaultAdvanceDelay is how long a scored card stays visible before the
// session moves to the next card.
const DefaultAdvanceDelay = time.Second

// Config configures a Session. Zero values produce sensible defaults; see
// field comments.
type Config struct {
	TypingMode       bool          `json:"typing_mode"`
	SpacedRepetition bool          `json:"spaced_repetition"` // confidence-weighted selection when true
	ShowHints        bool          `json:"show_hints"`
	ShowImages       bool          `json:"show_images"`
	AdvanceDelay     time.Duration `json:"-"` // zero → DefaultAdvanceDelay
	Rand             *rand.Rand    `json:"-"` // nil → entropy-seeded
}

// Session owns the working set for one study session. All state is
// session-local and discarded on Close; nothing is persisted.
//
// The advance timer fires on its own goroutine, so the session guards its
// state with a mutex even though there is only one logical mutator.
type Session struct {
	mu           sync.Mutex
	title        string
	cards        []Card
	currentIndex int
	streak       int
	correctCount int
	cfg          Config
	rng          *rand.Rand
	advance      *time.Timer
	closed       bool
}

// AnswerResult reports the state after one answered card.
type AnswerResult struct {
	Confidence   int `json:"confidence"`
	Streak       int `json:"streak"`
	CorrectCount int `json:"correct_count"`
	NextIndex    int `json:"next_index"`
}

// NewSession builds a working set from the given cards, attaching the neutral
// confidence prior and stamping every card as seen now. Returns ErrEmptySet
// when there are no cards to study.
func NewSession(title string, cards []Card, now time.Time, cfg Config) (*Session, error) {
	if len(cards) == 0 {
		return nil, ErrEmptySet
	}

	if cfg.AdvanceDelay == 0 {
		cfg.AdvanceDelay = DefaultAdvanceDelay
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	working := make([]Card, len(cards))
	copy(working, cards)
	for i := range working {
		working[i].Confidence = InitialConfidence
		working[i].LastSeen = now
	}

	return &Session{
		title: title,
		cards: working,
		cfg:   cfg,
		rng:   rng,
	}, nil
}

// Answer scores the card at index and schedules the advance to the next card.
// The confidence update is applied before the next card is chosen, so the
// selection never sees a stale value for the card just answered. The advance
// itself happens after the configured delay; the session state update does
// not wait for it.
func (s *Session) Answer(index int, correct bool, now time.Time) (AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return AnswerResult{}, ErrSessionClosed
	}
	if index < 0 || index >= len(s.cards) {
		return AnswerResult{}, ErrCardIndex
	}

	card := &s.cards[index]
	if correct {
		card.Confidence = min(100, card.Confidence+confidenceGain)
		s.streak++
		s.correctCount++
	} else {
		card.Confidence = max(0, card.Confidence-confidencePenalty)
		s.streak = 0
	}
	card.LastSeen = now

	next := s.nextIndexLocked()
	s.scheduleAdvanceLocked(next)

	return AnswerResult{
		Confidence:   card.Confidence,
		Streak:       s.streak,
		CorrectCount: s.correctCount,
		NextIndex:    next,
	}, nil
}

// NextCardIndex returns the index the scheduler would present next, without
// advancing.
func (s *Session) NextCardIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextIndexLocked()
}

// nextIndexLocked picks the next card. Sequential mode is a fixed rotation;
// spaced-repetition mode re-ranks the whole working set by confidence and
// draws uniformly from the lowest 40% (at least one card), so a just-missed
// card can repeat immediately.
func (s *Session) nextIndexLocked() int {
	n := len(s.cards)
	if !s.cfg.SpacedRepetition {
		return (s.currentIndex + 1) % n
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return s.cards[order[a]].Confidence < s.cards[order[b]].Confidence
	})

	pool := n * 2 / 5 // floor(0.4n)
	if pool < 1 {
		pool = 1
	}
	return order[s.rng.Intn(pool)]
}

// scheduleAdvanceLocked arms the presentation-delay timer. An earlier pending
// advance is replaced, and a fire after Close is a no-op.
func (s *Session) scheduleAdvanceLocked(next int) {
	if s.advance != nil {
		s.advance.Stop()
	}
	s.advance = time.AfterFunc(s.cfg.AdvanceDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		s.currentIndex = next
	})
}

// AggregateConfidence is the mean confidence across the working set, rounded
// to the nearest integer. Recomputed on every call.
func (s *Session) AggregateConfidence() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := 0
	for i := range s.cards {
		sum += s.cards[i].Confidence
	}
	return int(math.Round(float64(sum) / float64(len(s.cards))))
}

// Shuffle reorders the working set uniformly at random and resets the current
// index to the front. Confidence values travel with their cards.
func (s *Session) Shuffle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.rng.Shuffle(len(s.cards), func(i, j int) {
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	})
	s.currentIndex = 0
}

// Close tears the session down and cancels any pending advance. Safe to call
// more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.advance != nil {
		s.advance.Stop()
		s.advance = nil
	}
}

// Title returns the set title the session was started from.
func (s *Session) Title() string {
	return s.title
}

// Cards returns a snapshot copy of the working set.
func (s *Session) Cards() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Card, len(s.cards))
	copy(out, s.cards)
	return out
}

// Card returns a copy of the card at index.
func (s *Session) Card(index int) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.cards) {
		return Card{}, ErrCardIndex
	}
	return s.cards[index], nil
}

func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIndex
}

func (s *Session) Streak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streak
}

func (s *Session) CorrectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.correctCount
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cards)
}

// Options returns the mode toggles the session was started with.
func (s *Session) Options() Config {
	return s.cfg
}
