package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/remcard/remcard/models"
	"github.com/remcard/remcard/utils"
)

// GET /api/users/{nickname}/sets
func (db *DBHandler) GetSetsForUser(w http.ResponseWriter, r *http.Request) {
	// Extract nickname from URL
	nickname := r.PathValue("nickname")
	if nickname == "" {
		http.Error(w, "Nickname is required", http.StatusBadRequest)
		return
	}

	// Find the user by nickname
	var user models.User
	if err := db.Where("nickname = ?", nickname).First(&user).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	// Anyone can browse a user's public sets; only the owner sees private ones
	auth0ID, ok := utils.GetAuth0ID(r)
	isOwner := ok && user.Auth0ID == auth0ID

	query := db.Where("user_id = ?", user.ID)
	if !isOwner {
		query = query.Where("is_public = ?", true)
	}

	var flashcardSets []models.FlashcardSet
	setsResult := query.Preload("Flashcards", orderedCards).Find(&flashcardSets)

	if setsResult.Error != nil {
		http.Error(w, setsResult.Error.Error(), http.StatusInternalServerError)
		return
	}

	// If no sets found, return an empty array instead of null
	if len(flashcardSets) == 0 {
		flashcardSets = []models.FlashcardSet{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(flashcardSets); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
