package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/remcard/remcard/config"
	"github.com/remcard/remcard/handlers"
	"github.com/remcard/remcard/logger"
	"github.com/remcard/remcard/middleware"
	"github.com/remcard/remcard/quizgen"
)

func init() {
	// Load .env file if not in production environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

func main() {
	zlog := logger.New("logs/remcard.log", !config.Env.IsDevelopment)
	defer zlog.Sync()

	// Initialize database connection
	config.Connect()
	authMiddleware := middleware.EnsureValidToken()

	DBHandler := &handlers.DBHandler{DB: config.Database}
	studyHandler := handlers.NewStudyHandler(config.Database, zlog, config.Env.SessionTTL, config.Env.AdvanceDelay)
	quizHandler := &handlers.QuizHandler{
		DB: config.Database,
		Generator: &quizgen.Generator{
			Client: quizgen.NewClient(config.Env.AIBaseURL, config.Env.AIAPIKey, config.Env.AIModel, zlog),
			Log:    zlog,
		},
	}

	mux := http.NewServeMux()

	// Set
	mux.HandleFunc("GET /api/sets/{setID}", DBHandler.GetSetByID)
	mux.HandleFunc("POST /api/sets", middleware.SyncUserMiddleware(DBHandler.CreateFlashCardSet))
	mux.HandleFunc("POST /api/sets/with-cards", middleware.SyncUserMiddleware(DBHandler.CreateSetWithCards))
	mux.HandleFunc("PUT /api/sets/{setID}", middleware.SyncUserMiddleware(DBHandler.UpdateSetByID))
	mux.HandleFunc("DELETE /api/sets/{setID}", middleware.SyncUserMiddleware(DBHandler.DeleteSetByID))

	// Sharing
	mux.HandleFunc("POST /api/sets/{setID}/share", middleware.SyncUserMiddleware(DBHandler.CreateShareLink))
	mux.HandleFunc("GET /api/shared/{token}", DBHandler.GetSharedSet)

	// User sets
	mux.HandleFunc("GET /api/users/{nickname}/sets", DBHandler.GetSetsForUser)

	// Flashcard
	mux.HandleFunc("POST /api/sets/{setID}/flashcards/", middleware.SyncUserMiddleware(DBHandler.CreateFlashCard))
	mux.HandleFunc("GET /api/sets/{setID}/flashcards/{flashcardID}", middleware.SyncUserMiddleware(DBHandler.GetFlashcardByID))
	mux.HandleFunc("GET /api/sets/{setID}/flashcards", DBHandler.GetFlashcardsForSet)
	mux.HandleFunc("PUT /api/sets/{setID}/flashcards/{flashcardID}", middleware.SyncUserMiddleware(DBHandler.UpdateFlashCardByID))
	mux.HandleFunc("DELETE /api/sets/{setID}/flashcards/{flashcardID}", middleware.SyncUserMiddleware(DBHandler.DeleteFlashCardByID))

	// Learn mode
	mux.HandleFunc("POST /api/sets/{setID}/study", studyHandler.StartSession)
	mux.HandleFunc("GET /api/study/{sessionID}", studyHandler.GetSession)
	mux.HandleFunc("POST /api/study/{sessionID}/answer", studyHandler.AnswerCard)
	mux.HandleFunc("POST /api/study/{sessionID}/shuffle", studyHandler.ShuffleSession)
	mux.HandleFunc("DELETE /api/study/{sessionID}", studyHandler.EndSession)

	// Practice test generation
	mux.HandleFunc("POST /api/sets/{setID}/questions", quizHandler.GenerateQuestions)

	// Games
	mux.HandleFunc("GET /api/games/leaderboard/{setID}", DBHandler.GetGameLeaderboard)
	mux.HandleFunc("POST /api/games/score/{setID}", middleware.SyncUserMiddleware(DBHandler.CreateGameScore))

	// Configure CORS with specific options
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://remcard.app", "https://www.remcard.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(authMiddleware(mux))

	// Server configuration

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // fallback port for local development
	}
	serverAddr := "0.0.0.0:" + port

	http.ListenAndServe(serverAddr, corsHandler)
}
