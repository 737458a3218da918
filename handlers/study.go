package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/remcard/remcard/models"
	"github.com/remcard/remcard/study"
	"github.com/remcard/remcard/utils"
)

// StudyHandler serves learn-mode sessions. Sessions are in-memory only: the
// TTL registry evicts abandoned ones and the eviction hook cancels their
// pending advance timers, so nothing outlives its session.
type StudyHandler struct {
	DB           *gorm.DB
	Sessions     *cache.Cache
	Log          *zap.Logger
	AdvanceDelay time.Duration
}

func NewStudyHandler(db *gorm.DB, log *zap.Logger, sessionTTL, advanceDelay time.Duration) *StudyHandler {
	sessions := cache.New(sessionTTL, 10*time.Minute)
	sessions.OnEvicted(func(id string, v interface{}) {
		if sess, ok := v.(*study.Session); ok {
			sess.Close()
		}
	})
	return &StudyHandler{
		DB:           db,
		Sessions:     sessions,
		Log:          log,
		AdvanceDelay: advanceDelay,
	}
}

// gormSource adapts the database to the study package's SetSource.
type gormSource struct {
	db *gorm.DB
}

func (s gormSource) SetTitle(ctx context.Context, setID string) (string, error) {
	var set models.FlashcardSet
	if err := s.db.WithContext(ctx).Where("public_id = ?", setID).First(&set).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", study.ErrSetNotFound
		}
		return "", err
	}
	return set.Title, nil
}

func (s gormSource) CardsForSet(ctx context.Context, setID string) ([]study.Card, error) {
	var set models.FlashcardSet
	if err := s.db.WithContext(ctx).Where("public_id = ?", setID).First(&set).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, study.ErrSetNotFound
		}
		return nil, err
	}

	var flashcards []models.Flashcard
	if err := s.db.WithContext(ctx).
		Where("set_id = ?", set.ID).
		Order("position asc, id asc").
		Find(&flashcards).Error; err != nil {
		return nil, err
	}

	cards := make([]study.Card, len(flashcards))
	for i, fc := range flashcards {
		cards[i] = study.Card{
			ID:         fc.PublicID,
			Term:       fc.Term,
			Definition: fc.Definition,
			ImageURL:   fc.ImageURL,
		}
	}
	return cards, nil
}

// cardView is the presentation shape of the current card. In typing mode the
// definition is withheld and typed answers are checked server-side; in
// self-graded mode the client needs it to reveal the answer.
type cardView struct {
	Index      int    `json:"index"`
	Term       string `json:"term"`
	Definition string `json:"definition,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	Hint       string `json:"hint,omitempty"`
}

type sessionView struct {
	SessionID           string       `json:"session_id"`
	Title               string       `json:"title"`
	CardCount           int          `json:"card_count"`
	Card                cardView     `json:"card"`
	Streak              int          `json:"streak"`
	CorrectCount        int          `json:"correct_count"`
	AggregateConfidence int          `json:"aggregate_confidence"`
	Options             study.Config `json:"options"`
}

func (h *StudyHandler) snapshot(id string, sess *study.Session) sessionView {
	index := sess.CurrentIndex()
	card, _ := sess.Card(index)

	view := cardView{
		Index: index,
		Term:  card.Term,
	}
	if !sess.Options().TypingMode {
		view.Definition = card.Definition
	}
	if sess.Options().ShowImages {
		view.ImageURL = card.ImageURL
	}
	if sess.Options().ShowHints {
		view.Hint = study.Hint(card.Definition)
	}

	return sessionView{
		SessionID:           id,
		Title:               sess.Title(),
		CardCount:           sess.Len(),
		Card:                view,
		Streak:              sess.Streak(),
		CorrectCount:        sess.CorrectCount(),
		AggregateConfidence: sess.AggregateConfidence(),
		Options:             sess.Options(),
	}
}

func (h *StudyHandler) session(w http.ResponseWriter, r *http.Request) (string, *study.Session, bool) {
	id := r.PathValue("sessionID")
	v, found := h.Sessions.Get(id)
	if !found {
		http.Error(w, "Study session not found", http.StatusNotFound)
		return "", nil, false
	}
	return id, v.(*study.Session), true
}

// POST /api/sets/{setID}/study
func (h *StudyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	setID := r.PathValue("setID")

	var set models.FlashcardSet
	if err := h.DB.Preload("User").Where("public_id = ?", setID).First(&set).Error; err != nil {
		http.Error(w, "Set not found", http.StatusNotFound)
		return
	}
	auth0ID, authed := utils.GetAuth0ID(r)
	if !set.IsPublic && (!authed || set.User.Auth0ID != auth0ID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req struct {
		TypingMode       bool  `json:"typing_mode"`
		SpacedRepetition *bool `json:"spaced_repetition,omitempty"`
		ShowHints        bool  `json:"show_hints"`
		ShowImages       bool  `json:"show_images"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	cfg := study.Config{
		TypingMode:       req.TypingMode,
		SpacedRepetition: true, // default on
		ShowHints:        req.ShowHints,
		ShowImages:       req.ShowImages,
		AdvanceDelay:     h.AdvanceDelay,
	}
	if req.SpacedRepetition != nil {
		cfg.SpacedRepetition = *req.SpacedRepetition
	}

	now := time.Now()
	init := study.Initializer{Source: gormSource{db: h.DB}}
	sess, err := init.Start(r.Context(), setID, now, cfg)
	if err != nil {
		switch {
		case errors.Is(err, study.ErrEmptySet):
			http.Error(w, "This set has no cards to study", http.StatusUnprocessableEntity)
		case errors.Is(err, study.ErrSetNotFound):
			http.Error(w, "Set not found", http.StatusNotFound)
		default:
			http.Error(w, "Failed to start study session", http.StatusInternalServerError)
		}
		h.Log.Warn("study session start failed", zap.String("set_id", setID), zap.Error(err))
		return
	}

	sessionID, err := gonanoid.New()
	if err != nil {
		sess.Close()
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.Sessions.Set(sessionID, sess, cache.DefaultExpiration)

	// Best-effort bookkeeping; a failed write never blocks the session.
	if err := h.DB.Model(&set).Update("last_studied", now).Error; err != nil {
		h.Log.Warn("failed to record last_studied", zap.String("set_id", setID), zap.Error(err))
	}

	h.Log.Info("study session started",
		zap.String("session_id", sessionID),
		zap.String("set_id", setID),
		zap.Int("cards", sess.Len()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(h.snapshot(sessionID, sess))
}

// GET /api/study/{sessionID}
func (h *StudyHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := h.session(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.snapshot(id, sess))
}

// POST /api/study/{sessionID}/answer
//
// In typing mode the client sends the typed response and the server grades
// it; otherwise the client self-grades and sends correct directly.
func (h *StudyHandler) AnswerCard(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		CardIndex int     `json:"card_index"`
		Correct   *bool   `json:"correct,omitempty"`
		Response  *string `json:"response,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var correct bool
	switch {
	case sess.Options().TypingMode && req.Response != nil:
		card, err := sess.Card(req.CardIndex)
		if err != nil {
			http.Error(w, "Card index out of range", http.StatusBadRequest)
			return
		}
		correct = study.MatchAnswer(*req.Response, card.Definition)
	case req.Correct != nil:
		correct = *req.Correct
	default:
		http.Error(w, "An answer is required", http.StatusBadRequest)
		return
	}

	result, err := sess.Answer(req.CardIndex, correct, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, study.ErrCardIndex):
			http.Error(w, "Card index out of range", http.StatusBadRequest)
		case errors.Is(err, study.ErrSessionClosed):
			http.Error(w, "Study session has ended", http.StatusGone)
		default:
			http.Error(w, "Failed to record answer", http.StatusInternalServerError)
		}
		return
	}

	type answerResponse struct {
		Correct bool `json:"correct"`
		study.AnswerResult
		AggregateConfidence int `json:"aggregate_confidence"`
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(answerResponse{
		Correct:             correct,
		AnswerResult:        result,
		AggregateConfidence: sess.AggregateConfidence(),
	})
}

// POST /api/study/{sessionID}/shuffle
func (h *StudyHandler) ShuffleSession(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := h.session(w, r)
	if !ok {
		return
	}

	sess.Shuffle()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.snapshot(id, sess))
}

// DELETE /api/study/{sessionID}
func (h *StudyHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := h.session(w, r)
	if !ok {
		return
	}

	sess.Close()
	h.Sessions.Delete(id)

	w.WriteHeader(http.StatusNoContent)
}
