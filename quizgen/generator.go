package quizgen

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/remcard/remcard/study"
)

// Generator wraps the gateway client with the fallback path. A generation
// failure is never fatal to the caller: the quiz feature keeps working on
// locally built questions.
type Generator struct {
	Client *Client
	Log    *zap.Logger
}

// Questions returns generated quiz questions for the cards. On any gateway
// failure (unconfigured, unreachable, malformed output) it logs and returns
// the deterministic local set instead.
func (g *Generator) Questions(ctx context.Context, cards []study.Card, questionTypes []string, count int) []Question {
	if count <= 0 {
		count = len(cards)
	}

	questions, err := g.Client.Generate(ctx, cards, questionTypes, count)
	if err == nil && len(questions) > 0 {
		return questions
	}
	if err != nil {
		g.Log.Warn("question generation failed, using local fallback", zap.Error(err))
	}
	return Fallback(cards, count)
}

// Fallback builds a deterministic multiple-choice question per card:
// the prompt asks for the term's definition, distractors are the following
// cards' definitions in deck order. No randomness, so the same deck always
// produces the same quiz.
func Fallback(cards []study.Card, count int) []Question {
	if count <= 0 || count > len(cards) {
		count = len(cards)
	}

	questions := make([]Question, 0, count)
	for i := 0; i < count; i++ {
		card := cards[i]
		options := []string{card.Definition}
		for j := 1; j < len(cards) && len(options) < 4; j++ {
			options = append(options, cards[(i+j)%len(cards)].Definition)
		}
		questions = append(questions, Question{
			Type:          TypeMultipleChoice,
			Text:          fmt.Sprintf("What is the definition of %q?", card.Term),
			CorrectAnswer: card.Definition,
			Options:       options,
		})
	}
	return questions
}
