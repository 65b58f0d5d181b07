package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/YenerCenger/Company-Discovery-Agent/internal/ai"
	"github.com/YenerCenger/Company-Discovery-Agent/internal/analysis"
	"github.com/YenerCenger/Company-Discovery-Agent/internal/config"
)

// analyze-video runs the analysis pipeline on one local file and prints the
// result as JSON, without touching the job or result databases.
func main() {
	var (
		mediaPath  = flag.String("file", "", "path to the video file (required)")
		company    = flag.String("company", "", "company name to stamp on the result")
		numSamples = flag.Int("samples", 0, "frames per segment (0 = automatic)")
	)
	flag.Parse()

	if *mediaPath == "" {
		flag.Usage()
		os.Exit(2)
	}

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

	result := pipeline.ProcessVideo(context.Background(), analysis.ProcessRequest{
		MediaPath:   *mediaPath,
		CompanyName: *company,
		NumSamples:  *numSamples,
		Progress: func(done, total int) {
			log.Printf("Enriched segment %d/%d", done, total)
		},
	})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal("Failed to encode result:", err)
	}
	fmt.Println(string(out))

	if result.Status == analysis.StatusFailed {
		os.Exit(1)
	}
}
