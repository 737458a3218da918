package study

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	title    string
	titleErr error
	cards    []Card
	cardsErr error
}

func (f *fakeSource) SetTitle(ctx context.Context, setID string) (string, error) {
	return f.title, f.titleErr
}

func (f *fakeSource) CardsForSet(ctx context.Context, setID string) ([]Card, error) {
	return f.cards, f.cardsErr
}

func TestInitializerStart(t *testing.T) {
	src := &fakeSource{
		title: "Biology 101",
		cards: []Card{
			{ID: "a", Term: "ATP", Definition: "adenosine triphosphate"},
			{ID: "b", Term: "DNA", Definition: "deoxyribonucleic acid"},
		},
	}
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	sess, err := Initializer{Source: src}.Start(context.Background(), "set-1", now, Config{})
	require.NoError(t, err)
	defer sess.Close()

	assert.Equal(t, "Biology 101", sess.Title())
	cards := sess.Cards()
	require.Len(t, cards, 2)
	// Stored order is preserved and session metadata is attached.
	assert.Equal(t, "a", cards[0].ID)
	assert.Equal(t, "b", cards[1].ID)
	for _, c := range cards {
		assert.Equal(t, InitialConfidence, c.Confidence)
		assert.Equal(t, now, c.LastSeen)
	}
}

func TestInitializerSetNotFound(t *testing.T) {
	src := &fakeSource{titleErr: ErrSetNotFound}
	_, err := Initializer{Source: src}.Start(context.Background(), "missing", time.Now(), Config{})
	assert.ErrorIs(t, err, ErrSetNotFound)
}

func TestInitializerFetchErrorTreatedAsNotFound(t *testing.T) {
	src := &fakeSource{titleErr: errors.New("connection refused")}
	_, err := Initializer{Source: src}.Start(context.Background(), "set-1", time.Now(), Config{})
	assert.ErrorIs(t, err, ErrSetNotFound)

	src = &fakeSource{title: "ok", cardsErr: errors.New("timeout")}
	_, err = Initializer{Source: src}.Start(context.Background(), "set-1", time.Now(), Config{})
	assert.ErrorIs(t, err, ErrSetNotFound)
}

func TestInitializerEmptySet(t *testing.T) {
	src := &fakeSource{title: "Empty"}
	_, err := Initializer{Source: src}.Start(context.Background(), "set-1", time.Now(), Config{})
	assert.ErrorIs(t, err, ErrEmptySet)
}
