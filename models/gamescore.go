package models

import (
	"time"
)

// Game modes that report scores to a set leaderboard.
const (
	GameMatch   = "match"
	GameGravity = "gravity"
)

// GameScore records one finished run of a study game (match or gravity)
// against a flashcard set.
type GameScore struct {
	ID              uint         `gorm:"primaryKey"`
	UserID          uint         `gorm:"not null;index"`
	User            User         `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	FlashcardSetID  uint         `gorm:"not null;index"`
	FlashcardSet    FlashcardSet `gorm:"foreignKey:FlashcardSetID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Game            string       `gorm:"not null;size:20;index"`
	TimeSeconds     int          `gorm:"not null"`
	CorrectAttempts int          `gorm:"not null"`
	TotalAttempts   int          `gorm:"not null"`
	PlayedAt        time.Time    `gorm:"autoCreateTime"`
}
