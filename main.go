package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"google.golang.org/genai"

	"github.com/alexdjulin/ai-librarian/config"
	"github.com/alexdjulin/ai-librarian/controller"
	"github.com/alexdjulin/ai-librarian/services"
	"github.com/alexdjulin/ai-librarian/vectordb"
)

func main() {
	// Load .env file from the current directory; fall back to the process
	// environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.DefaultConfigFile
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load config: %v", err)
	}

	if key := os.Getenv("UNIDOC_LICENSE_KEY"); key != "" {
		if err := services.SetPDFLicense(key); err != nil {
			log.Printf("WARN: Failed to set Unidoc license key: %v. PDF extraction will fail.", err)
		}
	}

	ctx := context.Background()

	// Collection store, embedder and splitter are process-wide singletons,
	// wired once here and shared by every component.
	store := vectordb.NewChromaStore(cfg.Chroma.URL)
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}()

	embedder := vectordb.NewOllamaEmbedder(cfg.Ollama.URL, cfg.Ollama.Model, time.Duration(cfg.Ollama.TimeoutSecs)*time.Second)
	splitter := vectordb.NewTextSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	engine := vectordb.NewEngine(store, embedder, splitter, cfg.AddSimilarityThreshold, cfg.SearchDistanceThreshold)
	maintenance := vectordb.NewMaintenance(store)

	// Opening the client eagerly surfaces connectivity problems at startup
	// and ensures the well-known collections exist.
	if _, err := store.Client(ctx); err != nil {
		log.Fatalf("FATAL: Failed to initialise chroma store: %v", err)
	}

	geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create Gemini client: %v. Make sure GEMINI_API_KEY is set.", err)
	}
	log.Println("Successfully connected to Google Gemini.")

	summarizer := services.NewSummarizer(geminiClient, cfg.Gemini.SummarizeModel)
	wikipedia := services.NewWikipediaService(cfg.Wikipedia.APIURL, time.Duration(cfg.Wikipedia.TimeoutSecs)*time.Second, summarizer, engine)
	youtube := services.NewYouTubeService(cfg.Youtube.APIURL, cfg.Youtube.TranscriptURL, os.Getenv("GOOGLE_API_KEY"), cfg.Youtube.MaxResults, time.Duration(cfg.Youtube.TimeoutSecs)*time.Second, summarizer, engine)
	librarian := services.NewLibrarianService(geminiClient, cfg.Gemini.ChatModel, engine, wikipedia, youtube)
	librarianController := controller.NewLibrarianController(librarian, engine, maintenance)

	// Keep the local library folder in sync with book_info.
	if cfg.LibraryPath != "" {
		indexer := services.NewLibraryIndexer(engine, store)
		go func() {
			indexer.ScanAndIndexDirectory(ctx, cfg.LibraryPath)
			indexer.WatchDirectory(ctx, cfg.LibraryPath)
		}()
	}

	router := gin.Default()

	// CORS middleware for local front-ends.
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "AI Librarian",
			"version": "1.0.0",
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/chat", librarianController.Chat)
		apiV1.POST("/documents", librarianController.AddDocument)
		apiV1.POST("/search", librarianController.SearchDocuments)
		apiV1.GET("/collections/:name/documents", librarianController.ListDocuments)
		apiV1.GET("/collections/:name/count", librarianController.CountDocuments)
		apiV1.POST("/collections/:name/dedup", librarianController.RemoveDuplicates)
		apiV1.POST("/collections/:name/reset", librarianController.ResetCollection)
	}

	log.Printf("AI Librarian backend starting on http://localhost:%s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
