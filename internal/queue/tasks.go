package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TypeCardExtract is the task type for asynchronous card extraction.
const TypeCardExtract = "card:extract"

// QueueCards is the queue extraction tasks are enqueued on.
const QueueCards = "cards"

// ExtractionPayload is the JSON body of a card:extract task.
type ExtractionPayload struct {
	// SubmissionID identifies this request across logs and results.
	SubmissionID string `json:"submission_id"`

	// Source is a screenshot file path or http(s) URL.
	Source string `json:"source"`

	// Language is the recognition language; empty means the worker's
	// configured default.
	Language string `json:"language,omitempty"`

	// Store persists the card in the library when extraction succeeds.
	Store bool `json:"store"`
}

// Client enqueues extraction tasks onto Redis.
type Client struct {
	client *asynq.Client
}

// NewClient connects a task client to the Redis instance at addr.
func NewClient(addr string) *Client {
	return &Client{client: asynq.NewClient(asynq.RedisClientOpt{Addr: addr})}
}

// Close releases the client's Redis connections.
func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueExtraction submits a screenshot for background extraction and
// returns the assigned submission id.
func (c *Client) EnqueueExtraction(ctx context.Context, payload ExtractionPayload) (string, error) {
	if strings.TrimSpace(payload.Source) == "" {
		return "", fmt.Errorf("screenshot source is required")
	}
	if payload.SubmissionID == "" {
		payload.SubmissionID = uuid.NewString()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode extraction payload: %w", err)
	}

	task := asynq.NewTask(TypeCardExtract, body)
	if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueCards)); err != nil {
		return "", fmt.Errorf("enqueue extraction: %w", err)
	}
	return payload.SubmissionID, nil
}
