package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/YenerCenger/Company-Discovery-Agent/internal/ai"
	"github.com/YenerCenger/Company-Discovery-Agent/internal/analysis"
	"github.com/YenerCenger/Company-Discovery-Agent/internal/api"
	"github.com/YenerCenger/Company-Discovery-Agent/internal/config"
	"github.com/YenerCenger/Company-Discovery-Agent/internal/database"
	"github.com/YenerCenger/Company-Discovery-Agent/internal/dispatch"
	"github.com/YenerCenger/Company-Discovery-Agent/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}
	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY is required")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	mediaStorage, err := storage.NewLocalStorage(cfg.MediaDir)
	if err != nil {
		log.Fatal("Failed to initialize media storage:", err)
	}

	resultStore, err := database.NewResultStore(cfg.ResultsDBPath)
	if err != nil {
		log.Fatal("Failed to initialize result store:", err)
	}
	defer resultStore.Close()

	ctx := context.Background()
	jobStore, err := database.NewJobStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to job database:", err)
	}
	defer jobStore.Close()

	extractor, err := ai.NewFFmpegExtractor(cfg.FrameSize)
	if err != nil {
		log.Fatal("Failed to initialize frame extractor:", err)
	}
	defer extractor.Cleanup()

	transcriber := ai.NewWhisperTranscriber(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	vision := ai.NewVisionClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, "")

	segmenter := analysis.NewSegmenter(transcriber, extractor)
	analyzer := analysis.NewVisualAnalyzer(vision, vision, cfg.DetectorConfidence, cfg.OCRConfidence)
	enricher := analysis.NewEnricher(extractor, analyzer)
	pipeline := analysis.NewPipeline(segmenter, enricher)

	dispatcher := dispatch.NewDispatcher(jobStore, resultStore, pipeline, mediaStorage, cfg.WorkerCount)

	router := api.NewRouter(dispatcher)

	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("Media directory: %s", cfg.MediaDir)
	log.Printf("Results database: %s", cfg.ResultsDBPath)
	log.Printf("Worker count: %d", cfg.WorkerCount)

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
