package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/remcard/remcard/auth"
	"github.com/remcard/remcard/models"
	"github.com/remcard/remcard/utils"
)

// /api/sets/{setID}

func (db *DBHandler) GetSetByID(w http.ResponseWriter, r *http.Request) {
	setID := r.PathValue("setID")
	var set models.FlashcardSet
	// Preload the User to access Auth0ID without a separate query
	if err := db.Preload("User").Preload("Flashcards", orderedCards).Where("public_id = ?", setID).First(&set).Error; err != nil {
		log.Printf("GetSetByID: Set not found for public_id=%s: %v", setID, err)
		http.Error(w, fmt.Sprintf("Set with ID %s not found", setID), http.StatusNotFound)
		return
	}

	auth0ID, ok := utils.GetAuth0ID(r)
	isOwner := ok && set.User.Auth0ID == auth0ID

	type SetResponse struct {
		models.FlashcardSet
		IsOwner bool `json:"IsOwner"`
	}

	response := SetResponse{
		FlashcardSet: set,
		IsOwner:      isOwner,
	}

	if !set.IsPublic && !isOwner {
		log.Printf("GetSetByID: Forbidden access for set %s by auth0ID=%s", setID, auth0ID)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// POST /api/sets
func (db *DBHandler) CreateFlashCardSet(w http.ResponseWriter, r *http.Request) {
	// Get Auth0 ID from JWT/context
	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		log.Printf("CreateFlashCardSet: Unauthorized request")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Look up the user in your database
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		log.Printf("CreateFlashCardSet: User not found for auth0ID=%s: %v", auth0ID, err)
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	// Decode the request body
	type CreateSetRequest struct {
		Title    string `json:"Title"`
		IsPublic bool   `json:"IsPublic"`
	}
	var req CreateSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("CreateFlashCardSet: Invalid request body: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}

	publicID, err := gonanoid.New()
	if err != nil {
		log.Printf("CreateFlashCardSet: Failed to generate publicID: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Create the set
	set := models.FlashcardSet{
		Title:    req.Title,
		UserID:   user.ID,
		IsPublic: req.IsPublic,
		PublicID: publicID,
	}

	// Save to DB
	if err := db.Create(&set).Error; err != nil {
		log.Printf("CreateFlashCardSet: Failed to create set: %v", err)
		http.Error(w, "Failed to create set", http.StatusInternalServerError)
		return
	}

	log.Printf("CreateFlashCardSet: Successfully created set with publicID=%s for userID=%d", publicID, user.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(set)
}

// POST /api/sets/with-cards
func (db *DBHandler) CreateSetWithCards(w http.ResponseWriter, r *http.Request) {
	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	type CardRequest struct {
		Term       string `json:"term"`
		Definition string `json:"definition"`
		ImageURL   string `json:"image_url"`
	}
	var requestData struct {
		Title    string        `json:"title"`
		IsPublic bool          `json:"isPublic"`
		Cards    []CardRequest `json:"cards"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if requestData.Title == "" {
		http.Error(w, "Set title is required", http.StatusBadRequest)
		return
	}

	setPublicID, err := gonanoid.New()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	flashcardSet := models.FlashcardSet{
		Title:    requestData.Title,
		UserID:   user.ID,
		IsPublic: requestData.IsPublic,
		PublicID: setPublicID,
	}

	// Start a database transaction
	tx := db.Begin()
	if tx.Error != nil {
		http.Error(w, "Could not begin transaction", http.StatusInternalServerError)
		return
	}

	if err := tx.Create(&flashcardSet).Error; err != nil {
		tx.Rollback()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Create flashcards in display order
	for i, card := range requestData.Cards {
		if card.Term == "" || card.Definition == "" {
			tx.Rollback()
			http.Error(w, "Each flashcard must have a term and definition", http.StatusBadRequest)
			return
		}

		cardPublicID, err := gonanoid.New()
		if err != nil {
			tx.Rollback()
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		flashcard := models.Flashcard{
			PublicID:   cardPublicID,
			Term:       card.Term,
			Definition: card.Definition,
			ImageURL:   card.ImageURL,
			Position:   i,
			SetID:      flashcardSet.ID,
		}
		if err := tx.Create(&flashcard).Error; err != nil {
			tx.Rollback()
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	// Commit the transaction
	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Could not commit transaction", http.StatusInternalServerError)
		return
	}

	// Preload associated data for the response
	if err := db.Preload("Flashcards", orderedCards).First(&flashcardSet, flashcardSet.ID).Error; err != nil {
		http.Error(w, "Error retrieving created set", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(flashcardSet)
}

// PUT /api/sets/{setID}
func (db *DBHandler) UpdateSetByID(w http.ResponseWriter, r *http.Request) {
	setID := r.PathValue("setID")
	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		log.Printf("UpdateSetByID: Unauthorized request")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var set models.FlashcardSet
	// Preload the User to get owner info in one query
	if err := db.Preload("User").Where("public_id = ?", setID).First(&set).Error; err != nil {
		log.Printf("UpdateSetByID: Set not found for public_id=%s: %v", setID, err)
		http.Error(w, fmt.Sprintf("Set with ID %s not found", setID), http.StatusNotFound)
		return
	}

	if auth0ID != set.User.Auth0ID {
		log.Printf("UpdateSetByID: Unauthorized update attempt by auth0ID=%s for setID=%s", auth0ID, setID)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	// IsPublic carries the visibility toggle
	type UpdateSetRequest struct {
		Title    *string `json:"title,omitempty"`
		IsPublic *bool   `json:"isPublic,omitempty"`
	}

	var req UpdateSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("UpdateSetByID: Invalid request body: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title != nil {
		set.Title = *req.Title
	}
	if req.IsPublic != nil {
		set.IsPublic = *req.IsPublic
	}

	if err := db.Save(&set).Error; err != nil {
		log.Printf("UpdateSetByID: Failed to save set %s: %v", setID, err)
		http.Error(w, "Failed to update set", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(set)
}

// DELETE /api/sets/{setID}
func (db *DBHandler) DeleteSetByID(w http.ResponseWriter, r *http.Request) {
	setID := r.PathValue("setID")
	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var set models.FlashcardSet
	if err := db.Preload("User").Where("public_id = ?", setID).First(&set).Error; err != nil {
		http.Error(w, "Set not found", http.StatusNotFound)
		return
	}

	if auth0ID != set.User.Auth0ID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	// Cards, scores, then the set itself
	tx := db.Begin()
	if tx.Error != nil {
		http.Error(w, "Could not begin transaction", http.StatusInternalServerError)
		return
	}

	if err := tx.Where("set_id = ?", set.ID).Delete(&models.Flashcard{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete flashcards", http.StatusInternalServerError)
		return
	}
	if err := tx.Where("flashcard_set_id = ?", set.ID).Delete(&models.GameScore{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete game scores", http.StatusInternalServerError)
		return
	}
	if err := tx.Delete(&set).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to delete set", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Could not commit transaction", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/sets/{setID}/share
func (db *DBHandler) CreateShareLink(w http.ResponseWriter, r *http.Request) {
	setID := r.PathValue("setID")
	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var set models.FlashcardSet
	if err := db.Preload("User").Where("public_id = ?", setID).First(&set).Error; err != nil {
		http.Error(w, "Set not found", http.StatusNotFound)
		return
	}

	if auth0ID != set.User.Auth0ID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	token, err := auth.CreateShareToken(set.PublicID)
	if err != nil {
		log.Printf("CreateShareLink: %v", err)
		http.Error(w, "Failed to create share link", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"token": token,
		"path":  "/api/shared/" + token,
	})
}

// GET /api/shared/{token}
//
// A valid share token grants read access to the set even when it is private.
func (db *DBHandler) GetSharedSet(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	setID, err := auth.VerifyShareToken(token)
	if err != nil {
		http.Error(w, "Invalid or expired share link", http.StatusUnauthorized)
		return
	}

	var set models.FlashcardSet
	if err := db.Preload("Flashcards", orderedCards).Where("public_id = ?", setID).First(&set).Error; err != nil {
		http.Error(w, "Set not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(set)
}
