package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/remcard/remcard/models"
	"github.com/remcard/remcard/utils"
)

// GET /api/games/leaderboard/{setID}?game=match
func (db *DBHandler) GetGameLeaderboard(w http.ResponseWriter, r *http.Request) {

	auth0ID, ok := utils.GetAuth0ID(r)

	publicSetID := r.PathValue("setID")
	if publicSetID == "" {
		http.Error(w, "set ID is required", http.StatusBadRequest)
		return
	}

	game := r.URL.Query().Get("game")
	if game == "" {
		game = models.GameMatch
	}
	if game != models.GameMatch && game != models.GameGravity {
		http.Error(w, "unknown game", http.StatusBadRequest)
		return
	}

	var set models.FlashcardSet
	result := db.Preload("User").Where("public_id = ?", publicSetID).First(&set)
	if result.Error != nil {
		http.Error(w, "Set not found", http.StatusNotFound)
		return
	}

	if !set.IsPublic && (!ok || set.User.Auth0ID != auth0ID) {
		http.Error(w, "Set is not public", http.StatusForbidden)
		return
	}

	// Fastest runs first
	var scores []models.GameScore
	result = db.Preload("User").
		Where("flashcard_set_id = ? AND game = ?", set.ID, game).
		Order("time_seconds asc").
		Find(&scores)
	if result.Error != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(scores)
}

// POST /api/games/score/{setID}
func (db *DBHandler) CreateGameScore(w http.ResponseWriter, r *http.Request) {
	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	publicSetID := r.PathValue("setID")
	if publicSetID == "" {
		http.Error(w, "set ID is required", http.StatusBadRequest)
		return
	}

	var set models.FlashcardSet
	result := db.Preload("User").Where("public_id = ?", publicSetID).First(&set)
	if result.Error != nil {
		http.Error(w, "Set not found", http.StatusNotFound)
		return
	}

	if !set.IsPublic && set.User.Auth0ID != auth0ID {
		http.Error(w, "Set is not public", http.StatusForbidden)
		return
	}

	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		http.Error(w, "User not found in database", http.StatusNotFound)
		return
	}

	type ScorePayload struct {
		Game            string `json:"game"`
		CorrectAttempts uint   `json:"correctAttempts"`
		TotalAttempts   uint   `json:"totalAttempts"`
		Time            uint   `json:"time"`
	}

	var scoreReq ScorePayload

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&scoreReq); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if scoreReq.Game != models.GameMatch && scoreReq.Game != models.GameGravity {
		http.Error(w, "unknown game", http.StatusBadRequest)
		return
	}

	gameScore := models.GameScore{
		UserID:          user.ID,
		FlashcardSetID:  set.ID,
		Game:            scoreReq.Game,
		TimeSeconds:     int(scoreReq.Time),
		CorrectAttempts: int(scoreReq.CorrectAttempts),
		TotalAttempts:   int(scoreReq.TotalAttempts),
	}

	if err := db.Create(&gameScore).Error; err != nil {
		http.Error(w, "Failed to record score", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(gameScore)
}
