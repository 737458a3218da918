package study

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SetSource supplies set data for session initialization. Implementations
// must return cards in stored display order.
type SetSource interface {
	SetTitle(ctx context.Context, setID string) (string, error)
	CardsForSet(ctx context.Context, setID string) ([]Card, error)
}

// Initializer builds study sessions from a SetSource. It is the only
// component that reads external state; everything after Start is in-memory.
type Initializer struct {
	Source SetSource
}

// Start loads the set and produces a ready session. A missing set and a
// failed lookup both surface as ErrSetNotFound (no retry); a set with zero
// cards surfaces as ErrEmptySet. Either way the caller must abandon session
// setup.
func (in Initializer) Start(ctx context.Context, setID string, now time.Time, cfg Config) (*Session, error) {
	title, err := in.Source.SetTitle(ctx, setID)
	if err != nil {
		if errors.Is(err, ErrSetNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSetNotFound, err)
	}

	cards, err := in.Source.CardsForSet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSetNotFound, err)
	}

	return NewSession(title, cards, now, cfg)
}
