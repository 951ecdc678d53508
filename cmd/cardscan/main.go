package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/wotvtools/cardscan/internal/config"
	"github.com/wotvtools/cardscan/internal/imaging"
	"github.com/wotvtools/cardscan/internal/library"
	"github.com/wotvtools/cardscan/internal/ocr"
	"github.com/wotvtools/cardscan/internal/queue"
	"github.com/wotvtools/cardscan/internal/server"
	"github.com/wotvtools/cardscan/internal/vision"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("cardscan %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Log to stderr; stdout carries MCP protocol traffic and command
	// output.
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(cfg.Level()).
		With().Timestamp().Logger()

	var runErr error
	switch os.Args[1] {
	case "extract":
		runErr = runExtract(cfg, logger, os.Args[2:])
	case "serve":
		runErr = runServe(cfg, logger)
	case "worker":
		runErr = runWorker(cfg, logger)
	case "enqueue":
		runErr = runEnqueue(cfg, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
	if runErr != nil {
		logger.Fatal().Err(runErr).Str("command", os.Args[1]).Msg("command failed")
	}
}

func printUsage() {
	fmt.Println("cardscan - vision card extraction from game screenshots")
	fmt.Println()
	fmt.Println("Usage: cardscan <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  extract <source>   Extract a card from a screenshot and print it as JSON")
	fmt.Println("  serve              Run the MCP server over stdin/stdout")
	fmt.Println("  worker             Run the background extraction worker")
	fmt.Println("  enqueue <source>...  Submit screenshots to the extraction queue")
	fmt.Println("  version            Print version information")
	fmt.Println()
	fmt.Println("Extract options:")
	fmt.Println("  -language <code>        Recognition language (default from config)")
	fmt.Println("  -store                  Store the extracted card in the library")
	fmt.Println("  -diagnostics-dir <dir>  Write the diagnostic montage PNG here")
	fmt.Println()
	fmt.Println("Enqueue options:")
	fmt.Println("  -language <code>   Recognition language for the task")
	fmt.Println("  -store             Ask the worker to store the card")
	fmt.Println()
	fmt.Println("Configuration is read from CARDSCAN_* environment variables")
	fmt.Println("(see .env support via godotenv).")
}

// engineFactory builds per-call Tesseract engines from the config.
func engineFactory(cfg *config.Config) func(language string) (ocr.Engine, error) {
	return func(language string) (ocr.Engine, error) {
		return ocr.NewTesseract(ocr.TesseractConfig{
			Language:       language,
			TessdataPrefix: cfg.TessdataPrefix,
		})
	}
}

func screenshotCache(cfg *config.Config) *imaging.ScreenshotCache {
	client := &http.Client{Timeout: cfg.FetchTimeout}
	return imaging.NewScreenshotCache(client, cfg.MaxDownloadBytes)
}

func runExtract(cfg *config.Config, logger zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	language := fs.String("language", "", "recognition language")
	store := fs.Bool("store", false, "store the extracted card in the library")
	diagnosticsDir := fs.String("diagnostics-dir", cfg.DiagnosticsDir, "write the diagnostic montage PNG here")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("extract needs exactly one screenshot source")
	}
	source := fs.Arg(0)

	if *language == "" {
		*language = cfg.OCRLanguage
	}

	img, err := screenshotCache(cfg).Load(context.Background(), source)
	if err != nil {
		return err
	}

	engine, err := engineFactory(cfg)(*language)
	if err != nil {
		return fmt.Errorf("create recognition engine: %w", err)
	}
	defer engine.Close()

	result := vision.Extract(context.Background(), engine, img, vision.Options{
		Diagnostics: *diagnosticsDir != "",
	})

	if *diagnosticsDir != "" && result.Diagnostics != nil {
		if err := writeDiagnostics(*diagnosticsDir, img, result); err != nil {
			logger.Warn().Err(err).Msg("diagnostic images not written")
		} else {
			logger.Info().Str("dir", *diagnosticsDir).Msg("diagnostic images written")
		}
	}

	if *store && result.Success {
		lib, err := library.Open(cfg.LibraryPath)
		if err != nil {
			return err
		}
		defer lib.Close()
		stored, err := lib.Upsert(context.Background(), result.Card)
		if err != nil {
			return fmt.Errorf("store card: %w", err)
		}
		logger.Info().Str("card", stored.Name).Str("card_id", stored.ID).Msg("card stored")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if !result.Success {
		os.Exit(1)
	}
	return nil
}

// writeDiagnostics saves the pipeline montage plus the screenshot with
// the located regions outlined.
func writeDiagnostics(dir string, img image.Image, result *vision.ExtractionResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	diag := result.Diagnostics
	if err := imaging.SavePNG(filepath.Join(dir, "cardscan-montage.png"), diag.Montage()); err != nil {
		return err
	}
	annotated := imaging.DrawRegions(img, diag.Regions.Stats.Rect(), diag.Regions.Info.Rect())
	return imaging.SavePNG(filepath.Join(dir, "cardscan-regions.png"), annotated)
}

func runServe(cfg *config.Config, logger zerolog.Logger) error {
	lib, err := library.Open(cfg.LibraryPath)
	if err != nil {
		return err
	}
	defer lib.Close()

	srv, err := server.New(server.Config{
		Engine:          engineFactory(cfg),
		DefaultLanguage: cfg.OCRLanguage,
		Screenshots:     screenshotCache(cfg),
		Library:         lib,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	logger.Info().Str("version", Version).Msg("MCP server starting")
	return srv.Run()
}

func runWorker(cfg *config.Config, logger zerolog.Logger) error {
	lib, err := library.Open(cfg.LibraryPath)
	if err != nil {
		return err
	}
	defer lib.Close()

	w, err := queue.NewWorker(queue.WorkerConfig{
		RedisAddr:       cfg.RedisAddr,
		Concurrency:     cfg.WorkerConcurrency,
		Engine:          engineFactory(cfg),
		DefaultLanguage: cfg.OCRLanguage,
		Screenshots:     screenshotCache(cfg),
		Library:         lib,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.Run(ctx)
}

func runEnqueue(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("enqueue", flag.ExitOnError)
	language := fs.String("language", "", "recognition language for the task")
	store := fs.Bool("store", false, "ask the worker to store the card")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("enqueue needs at least one screenshot source")
	}

	client := queue.NewClient(cfg.RedisAddr)
	defer client.Close()

	for _, source := range fs.Args() {
		id, err := client.EnqueueExtraction(context.Background(), queue.ExtractionPayload{
			Source:   source,
			Language: *language,
			Store:    *store,
		})
		if err != nil {
			return err
		}
		fmt.Println(id)
	}
	return nil
}
