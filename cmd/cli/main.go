// Command cli is a developer tool for exercising the receipt pipeline
// against local image files, without the API server or database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/rjdelrosario/gastos/internal/domain"
	"github.com/rjdelrosario/gastos/internal/gemini"
	"github.com/rjdelrosario/gastos/internal/logger"
	"github.com/rjdelrosario/gastos/internal/pipeline"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "parse":
		runParse(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Gastos CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  parse     Parse a local receipt image and print the draft")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runParse(log zerolog.Logger) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to a local receipt image")
	currency := fs.String("currency", domain.DefaultCurrency, "Default currency for the draft")
	instructions := fs.String("instructions", "", "Extra parsing instructions")
	fs.Parse(os.Args[2:])

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("GEMINI_API_KEY is required")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read file")
	}

	mimeType := mime.TypeByExtension(filepath.Ext(*filePath))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	ingestor := pipeline.NewIngestor(gemini.New(apiKey, log), nil, log)

	draft, err := ingestor.ParseReceipt(ctx, pipeline.Upload{
		Filename: filepath.Base(*filePath),
		MIMEType: mimeType,
		Data:     data,
	}, pipeline.Options{
		DefaultCurrency: *currency,
		Instructions:    *instructions,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Parse failed")
	}

	out, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode draft")
	}
	fmt.Println(string(out))
}
