package handlers

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"github.com/remcard/remcard/models"
	"github.com/remcard/remcard/quizgen"
	"github.com/remcard/remcard/study"
	"github.com/remcard/remcard/utils"
)

// QuizHandler builds practice-test questions for a set.
type QuizHandler struct {
	DB        *gorm.DB
	Generator *quizgen.Generator
}

// POST /api/sets/{setID}/questions
func (h *QuizHandler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	setID := r.PathValue("setID")

	var set models.FlashcardSet
	if err := h.DB.Preload("User").Preload("Flashcards", orderedCards).Where("public_id = ?", setID).First(&set).Error; err != nil {
		http.Error(w, "Set not found", http.StatusNotFound)
		return
	}

	auth0ID, ok := utils.GetAuth0ID(r)
	if !set.IsPublic && (!ok || set.User.Auth0ID != auth0ID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if len(set.Flashcards) == 0 {
		http.Error(w, "This set has no cards", http.StatusUnprocessableEntity)
		return
	}

	var req struct {
		QuestionTypes []string `json:"question_types"`
		Count         int      `json:"count"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	if len(req.QuestionTypes) == 0 {
		req.QuestionTypes = []string{quizgen.TypeMultipleChoice}
	}

	cards := make([]study.Card, len(set.Flashcards))
	for i, fc := range set.Flashcards {
		cards[i] = study.Card{
			ID:         fc.PublicID,
			Term:       fc.Term,
			Definition: fc.Definition,
			ImageURL:   fc.ImageURL,
		}
	}

	// Questions never fails; the generator falls back to local questions on
	// any gateway trouble.
	questions := h.Generator.Questions(r.Context(), cards, req.QuestionTypes, req.Count)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"questions": questions,
	})
}
