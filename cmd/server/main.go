package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/ib-tutor/backend/internal/auth"
	"github.com/ib-tutor/backend/internal/database"
	"github.com/ib-tutor/backend/internal/jobs"
	"github.com/ib-tutor/backend/internal/middleware"
	"github.com/ib-tutor/backend/internal/progress"
	"github.com/ib-tutor/backend/internal/questions"
	"github.com/ib-tutor/backend/internal/tutor"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Stores
	questionStore := questions.NewStore(db)
	progressStore := progress.NewStore(db)

	// Out-of-band attempt replay (requires Redis; optional)
	var retry tutor.RetryQueue
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		manager := jobs.NewManager(redisURL, progressStore)
		go func() {
			if err := manager.Start(); err != nil {
				log.Printf("Attempt replay worker stopped: %v", err)
			}
		}()
		defer manager.Stop()
		retry = manager
	} else {
		log.Println("REDIS_URL not set; failed attempts are logged but not replayed")
	}

	// Tutoring pipeline
	llmClient := tutor.NewClient()
	tutorService := tutor.NewService(llmClient, progressStore, retry)

	// Handlers
	authHandler := auth.NewHandler(db)
	questionHandler := questions.NewHandler(questionStore)
	tutorHandler := tutor.NewHandler(tutorService, questionStore)
	progressHandler := progress.NewHandler(progressStore)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/questions/{id:[0-9]+}", questionHandler.GetQuestion).Methods("GET")
	protected.HandleFunc("/subjects/{subject}/questions", questionHandler.ListBySubject).Methods("GET")
	protected.HandleFunc("/ai/chat", tutorHandler.Chat).Methods("POST")
	protected.HandleFunc("/ai/hint", tutorHandler.Hint).Methods("POST")
	protected.HandleFunc("/ai/evaluate", tutorHandler.Evaluate).Methods("POST")
	protected.HandleFunc("/progress", progressHandler.ListProgress).Methods("GET")
	protected.HandleFunc("/stats", progressHandler.GetStats).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
