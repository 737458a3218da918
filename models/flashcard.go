package models

import "gorm.io/gorm"

// Flashcard represents an individual flashcard
type Flashcard struct {
	gorm.Model
	PublicID   string `gorm:"size:100;uniqueIndex"`
	Term       string `gorm:"not null;size:200"`
	Definition string `gorm:"not null;size:1000"`
	ImageURL   string `gorm:"size:500"`

	// Display position within the set; study sessions load cards in this order
	Position int `gorm:"not null;default:0;index"`

	SetID        uint         `gorm:"not null"`
	FlashcardSet FlashcardSet `gorm:"foreignKey:SetID" json:"-"`
}
