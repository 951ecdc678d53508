package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/wotvtools/cardscan/internal/imaging"
	"github.com/wotvtools/cardscan/internal/library"
	"github.com/wotvtools/cardscan/internal/ocr"
	"github.com/wotvtools/cardscan/internal/vision"
)

// EngineFactory builds a recognition engine for one language. Engines
// are per-task because the underlying Tesseract client is not safe to
// share across languages.
type EngineFactory func(language string) (ocr.Engine, error)

// WorkerConfig wires a Worker's collaborators.
type WorkerConfig struct {
	// RedisAddr is the Redis instance holding the task queues.
	RedisAddr string

	// Concurrency is the number of tasks processed in parallel.
	Concurrency int

	// Engine builds recognition engines; required.
	Engine EngineFactory

	// DefaultLanguage is used when a payload names no language.
	DefaultLanguage string

	// Screenshots loads and caches screenshot images; required.
	Screenshots *imaging.ScreenshotCache

	// Library receives successfully extracted cards when a payload
	// asks for storage. Optional; storage requests fail without it.
	Library *library.Store

	Logger zerolog.Logger
}

// Worker consumes card:extract tasks and runs the extraction pipeline
// on each.
type Worker struct {
	cfg    WorkerConfig
	server *asynq.Server
}

// NewWorker validates the configuration and prepares a worker. Run
// starts it.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine factory is required")
	}
	if cfg.Screenshots == nil {
		return nil, fmt.Errorf("screenshot cache is required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "eng"
	}
	return &Worker{cfg: cfg}, nil
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.server = asynq.NewServer(
		asynq.RedisClientOpt{Addr: w.cfg.RedisAddr},
		asynq.Config{
			Concurrency: w.cfg.Concurrency,
			Queues: map[string]int{
				QueueCards: 10,
				"default":  1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCardExtract, w.handleExtract)

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	w.cfg.Logger.Info().
		Int("concurrency", w.cfg.Concurrency).
		Str("redis", w.cfg.RedisAddr).
		Msg("extraction worker starting")
	return w.server.Run(mux)
}

// handleExtract runs one extraction task. It returns an error only for
// infrastructure failures worth retrying; a screenshot that fails to
// parse is logged and consumed, since retrying it cannot help.
func (w *Worker) handleExtract(ctx context.Context, task *asynq.Task) error {
	var payload ExtractionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode extraction payload: %v: %w", err, asynq.SkipRetry)
	}
	if strings.TrimSpace(payload.Source) == "" {
		return fmt.Errorf("extraction payload names no source: %w", asynq.SkipRetry)
	}

	logger := w.cfg.Logger.With().
		Str("submission_id", payload.SubmissionID).
		Str("source", payload.Source).
		Logger()

	img, err := w.cfg.Screenshots.Load(ctx, payload.Source)
	if err != nil {
		logger.Error().Err(err).Msg("screenshot load failed")
		return fmt.Errorf("load screenshot: %w", err)
	}

	language := payload.Language
	if language == "" {
		language = w.cfg.DefaultLanguage
	}
	engine, err := w.cfg.Engine(language)
	if err != nil {
		logger.Error().Err(err).Str("language", language).Msg("recognition engine unavailable")
		return fmt.Errorf("create recognition engine: %w", err)
	}
	defer engine.Close()

	result := vision.Extract(ctx, engine, img, vision.Options{})
	if !result.Success {
		logger.Warn().
			Strs("errors", result.Errors).
			Msg("extraction failed")
		return nil
	}

	event := logger.Info().Str("card", result.Name)
	if payload.Store {
		if w.cfg.Library == nil {
			logger.Error().Msg("storage requested but no library configured")
			return fmt.Errorf("storage requested but no library configured: %w", asynq.SkipRetry)
		}
		stored, err := w.cfg.Library.Upsert(ctx, result.Card)
		if err != nil {
			logger.Error().Err(err).Msg("card storage failed")
			return fmt.Errorf("store card: %w", err)
		}
		event = event.Str("card_id", stored.ID)
	}
	event.Msg("card extracted")
	return nil
}
