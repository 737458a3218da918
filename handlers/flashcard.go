package handlers

import (
	"encoding/json"
	"net/http"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/remcard/remcard/models"
	"gorm.io/gorm"

	"github.com/remcard/remcard/utils"
)

type DBHandler struct {
	*gorm.DB
}

// orderedCards keeps preloaded flashcards in stored display order.
func orderedCards(tx *gorm.DB) *gorm.DB {
	return tx.Order("position asc, id asc")
}

func (db *DBHandler) GetFlashcardByID(w http.ResponseWriter, r *http.Request) {

	flashcardID := r.PathValue("flashcardID")
	if flashcardID == "" {
		http.Error(w, "Flashcard ID is required", http.StatusBadRequest)
		return
	}

	var flashcard models.Flashcard

	result := db.Where("public_id = ?", flashcardID).First(&flashcard)

	if result.Error != nil {
		http.Error(w, "Flashcard not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(flashcard); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}

}

func (db *DBHandler) CreateFlashCard(w http.ResponseWriter, r *http.Request) {

	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var user models.User
	setID := r.PathValue("setID")
	var set models.FlashcardSet

	if err := db.Where("public_id = ?", setID).First(&set).Error; err != nil {
		http.Error(w, "Set not found", http.StatusNotFound)
		return
	}

	if err := db.Where("id = ?", set.UserID).First(&user).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if auth0ID != user.Auth0ID {
		http.Error(w, "Status Forbidden", http.StatusForbidden)
		return
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	type FlashcardRequestData struct {
		Term       string `json:"term"`
		Definition string `json:"definition"`
		ImageURL   string `json:"image_url"`
	}

	var flashcardRequest FlashcardRequestData

	if err := decoder.Decode(&flashcardRequest); err != nil {
		http.Error(w, "Could not decode request", http.StatusBadRequest)
		return
	}

	if flashcardRequest.Term == "" || flashcardRequest.Definition == "" {
		http.Error(w, "Term and definition are required", http.StatusBadRequest)
		return
	}

	publicID, err := gonanoid.New()
	if err != nil {
		http.Error(w, "Failed to generate ID", http.StatusInternalServerError)
		return
	}

	// New cards go to the end of the set's display order.
	var lastPosition int
	db.Model(&models.Flashcard{}).
		Where("set_id = ?", set.ID).
		Select("COALESCE(MAX(position), -1)").
		Scan(&lastPosition)

	flashcard := models.Flashcard{
		Term:       flashcardRequest.Term,
		Definition: flashcardRequest.Definition,
		ImageURL:   flashcardRequest.ImageURL,
		Position:   lastPosition + 1,
		PublicID:   publicID,
		SetID:      set.ID,
	}

	if err := db.Create(&flashcard).Error; err != nil {
		http.Error(w, "Failed to create flashcard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(flashcard)
}

func (db *DBHandler) UpdateFlashCardByID(w http.ResponseWriter, r *http.Request) {
	setID := r.PathValue("setID")
	flashcardID := r.PathValue("flashcardID")

	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var set models.FlashcardSet
	if err := db.Where("public_id = ?", setID).First(&set).Error; err != nil {
		http.Error(w, "Set not found", http.StatusNotFound)
		return
	}

	var owner models.User
	if err := db.Where("id = ?", set.UserID).First(&owner).Error; err != nil {
		http.Error(w, "Owner not found", http.StatusInternalServerError)
		return
	}

	if owner.Auth0ID != auth0ID {
		http.Error(w, "Forbidden: You do not own this set", http.StatusForbidden)
		return
	}

	// Find the flashcard
	var flashcard models.Flashcard
	if err := db.Where("public_id = ? AND set_id = ?", flashcardID, set.ID).First(&flashcard).Error; err != nil {
		http.Error(w, "Flashcard not found", http.StatusNotFound)
		return
	}

	// Decode the update data
	type FlashcardUpdateRequest struct {
		Term       *string `json:"term,omitempty"`
		Definition *string `json:"definition,omitempty"`
		ImageURL   *string `json:"image_url,omitempty"`
		Position   *int    `json:"position,omitempty"`
	}
	var req FlashcardUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Update fields if provided
	if req.Term != nil {
		flashcard.Term = *req.Term
	}
	if req.Definition != nil {
		flashcard.Definition = *req.Definition
	}
	if req.ImageURL != nil {
		flashcard.ImageURL = *req.ImageURL
	}
	if req.Position != nil {
		flashcard.Position = *req.Position
	}

	// Save the updated flashcard
	if err := db.Save(&flashcard).Error; err != nil {
		http.Error(w, "Failed to update flashcard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(flashcard)
}

func (db *DBHandler) DeleteFlashCardByID(w http.ResponseWriter, r *http.Request) {
	setID := r.PathValue("setID")
	flashcardID := r.PathValue("flashcardID")

	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		http.Error(w, "Not authorized", http.StatusForbidden)
		return
	}

	var set models.FlashcardSet
	if err := db.Where("public_id = ?", setID).First(&set).Error; err != nil {
		http.Error(w, "Could not find flashcard set", http.StatusNotFound)
		return
	}

	var setOwner models.User
	if err := db.Where("id = ?", set.UserID).First(&setOwner).Error; err != nil {
		http.Error(w, "Could not find flashcard set owner", http.StatusInternalServerError)
		return
	}

	if auth0ID != setOwner.Auth0ID {
		http.Error(w, "Not authorized", http.StatusForbidden)
		return
	}

	result := db.Where("public_id = ? AND set_id = ?", flashcardID, set.ID).Delete(&models.Flashcard{})
	if result.Error != nil {
		http.Error(w, "Failed to delete flashcard", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Flashcard not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (db *DBHandler) GetFlashcardsForSet(w http.ResponseWriter, r *http.Request) {
	setID := r.PathValue("setID")

	var set models.FlashcardSet
	if err := db.Where("public_id = ?", setID).First(&set).Error; err != nil {
		http.Error(w, "Set not found", http.StatusNotFound)
		return
	}

	var user models.User
	if err := db.Where("id = ?", set.UserID).First(&user).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if !set.IsPublic {
		// If not public, check authentication and ownership
		auth0ID, ok := utils.GetAuth0ID(r)
		if !ok || user.Auth0ID != auth0ID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	var flashcards []models.Flashcard
	if err := db.Where("set_id = ?", set.ID).Order("position asc, id asc").Find(&flashcards).Error; err != nil {
		http.Error(w, "Failed to fetch flashcards", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(flashcards)
}
