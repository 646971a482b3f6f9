// Package report delivers execution outcomes to the remote authority.
//
// Delivery is strictly best-effort: failures are logged and counted,
// never retried, and never surfaced to the caller. The local outcome is
// already final regardless of whether the server hears about it.
package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ohfixit/helperd/internal/engine"
	"github.com/ohfixit/helperd/internal/observability"
)

var ErrServerRejected = errors.New("report: server rejected report")

const reportPath = "/api/automation/helper/report"

// RollbackPoint correlates a successful remediation with its means of
// reversal. Produced only on success.
type RollbackPoint struct {
	Method string            `json:"method"`
	Data   RollbackPointData `json:"data"`
}

type RollbackPointData struct {
	ActionID   string `json:"action_id"`
	Timestamp  string `json:"timestamp"`
	OutputHash string `json:"output_hash"`
}

// NewRollbackPoint derives the command_sequence rollback point for a
// successful execution.
func NewRollbackPoint(actionID, transcript string, at time.Time) *RollbackPoint {
	return &RollbackPoint{
		Method: "command_sequence",
		Data: RollbackPointData{
			ActionID:   actionID,
			Timestamp:  at.UTC().Format(time.RFC3339),
			OutputHash: base64.StdEncoding.EncodeToString([]byte(transcript)),
		},
	}
}

type payload struct {
	ActionID      string            `json:"actionId"`
	RollbackID    string            `json:"rollbackId,omitempty"`
	Success       bool              `json:"success"`
	Output        string            `json:"output"`
	Artifacts     []engine.Artifact `json:"artifacts"`
	RollbackPoint *RollbackPoint    `json:"rollbackPoint,omitempty"`
	Timestamp     string            `json:"timestamp"`
}

// Client posts outcome reports to the authority. The bearer credential
// is always the one the caller supplied for the execution itself; the
// helper holds no outbound credential of its own.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
}

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// Execution reports a forward execution. A rollback point is attached
// only when the execution succeeded.
func (c *Client) Execution(ctx context.Context, token, actionID string, success bool, transcript string) error {
	var point *RollbackPoint
	if success {
		point = NewRollbackPoint(actionID, transcript, c.now())
	}
	return c.send(ctx, token, payload{
		ActionID:      actionID,
		Success:       success,
		Output:        transcript,
		Artifacts:     engine.TranscriptArtifacts(transcript),
		RollbackPoint: point,
		Timestamp:     c.now().UTC().Format(time.RFC3339),
	})
}

// Rollback reports a rollback run under the derived <action>_rollback
// id. No new rollback point is minted for a rollback.
func (c *Client) Rollback(ctx context.Context, token, actionID, rollbackID string, success bool, transcript string) error {
	reportID := actionID + "_rollback"
	return c.send(ctx, token, payload{
		ActionID:   reportID,
		RollbackID: rollbackID,
		Success:    success,
		Output:     transcript,
		Artifacts:  engine.TranscriptArtifacts(transcript),
		Timestamp:  c.now().UTC().Format(time.RFC3339),
	})
}

// Dispatch runs fn detached. Errors are logged and counted, nothing
// more; there is no retry and no feedback channel to the caller.
func Dispatch(name string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			observability.RecordReportFailure()
			log.Error().Str("report", name).Err(err).Msg("report delivery failed")
		}
	}()
}

func (c *Client) send(ctx context.Context, token string, p payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+reportPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrServerRejected, resp.StatusCode)
	}
	log.Info().Str("action", p.ActionID).Bool("success", p.Success).Msg("report delivered")
	return nil
}
