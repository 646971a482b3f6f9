// Package helper is the authorized action-execution and rollback
// engine: it turns the remote authority's intent into safely-bounded,
// auditable local side effects.
//
// Every execute or rollback call walks the same gate order: catalog
// lookup, credential validation, platform check — all before a single
// child process is spawned. Rejections there have zero side effects.
package helper

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ohfixit/helperd/internal/auth"
	"github.com/ohfixit/helperd/internal/catalog"
	"github.com/ohfixit/helperd/internal/engine"
	"github.com/ohfixit/helperd/internal/journal"
	"github.com/ohfixit/helperd/internal/observability"
	"github.com/ohfixit/helperd/internal/report"
)

const Version = "0.1.0"

var (
	ErrNotReversible = errors.New("helper: action not reversible")
	ErrWrongPlatform = errors.New("helper: action not compatible with this platform")
)

// Result is the outcome returned to the caller of one execute or
// rollback call. Exactly one Result is produced per call.
type Result struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Error      string            `json:"error,omitempty"`
	Artifacts  []engine.Artifact `json:"artifacts"`
	RollbackID string            `json:"rollback_id,omitempty"`
}

// Health is the capability descriptor answered by health checks.
type Health struct {
	Status           string    `json:"status"`
	Version          string    `json:"version"`
	Timestamp        time.Time `json:"timestamp"`
	ActionsAvailable int       `json:"actions_available"`
}

// Config wires the service's collaborators. Catalog and Validator are
// required; the rest default sensibly.
type Config struct {
	Catalog   *catalog.Catalog
	Validator auth.Validator
	Reporter  *report.Client
	Journal   *journal.Journal
	Runner    engine.CommandRunner
	// Platform is the catalog OS tag for this host ("macos", ...).
	Platform string
}

// bundle is the shared state both call paths consume. The in-process
// path guards it with the service mutex; the HTTP path operates on a
// clone so the two cannot race (the catalog is immutable anyway).
type bundle struct {
	catalog   *catalog.Catalog
	validator auth.Validator
	reporter  *report.Client
}

// Service executes allowlisted actions and their rollbacks.
type Service struct {
	mu       sync.Mutex
	bundle   bundle
	engine   *engine.Engine
	journal  *journal.Journal
	platform string
	started  time.Time
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("helper: catalog is required")
	}
	if cfg.Validator == nil {
		return nil, errors.New("helper: credential validator is required")
	}
	platform := cfg.Platform
	if platform == "" {
		platform = PlatformTag(runtime.GOOS)
	}
	return &Service{
		bundle: bundle{
			catalog:   cfg.Catalog,
			validator: cfg.Validator,
			reporter:  cfg.Reporter,
		},
		engine:   engine.New(cfg.Runner),
		journal:  cfg.Journal,
		platform: platform,
		started:  time.Now(),
	}, nil
}

// PlatformTag maps a GOOS value onto the catalog's OS tags.
func PlatformTag(goos string) string {
	switch goos {
	case "darwin":
		return "macos"
	default:
		return goos
	}
}

// snapshot copies the shared bundle under the lock. Callers work on the
// copy so command execution never holds the lock.
func (s *Service) snapshot() bundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundle
}

// Clone returns an independently owned copy of the service for the
// HTTP path.
func (s *Service) Clone() *Service {
	return &Service{
		bundle:   s.snapshot(),
		engine:   s.engine,
		journal:  s.journal,
		platform: s.platform,
		started:  s.started,
	}
}

// gate runs every pre-execution check. No child process may be spawned
// before gate returns nil.
func (s *Service) gate(b bundle, actionID, token string) (catalog.ActionDefinition, auth.Claims, error) {
	action, err := b.catalog.Get(actionID)
	if err != nil {
		return catalog.ActionDefinition{}, auth.Claims{}, err
	}
	claims, err := b.validator.Validate(token)
	if err != nil {
		return catalog.ActionDefinition{}, auth.Claims{}, err
	}
	if action.OS != s.platform {
		return catalog.ActionDefinition{}, auth.Claims{}, fmt.Errorf("%w: %s targets %s", ErrWrongPlatform, actionID, action.OS)
	}
	return action, claims, nil
}

// Execute runs one allowlisted action. The parameters argument is
// accepted for interface parity with the authority but no catalog
// entry consumes parameters: command lists are fixed at build time.
func (s *Service) Execute(ctx context.Context, actionID string, parameters map[string]any, token string) (Result, error) {
	b := s.snapshot()
	action, claims, err := s.gate(b, actionID, token)
	if err != nil {
		return Result{}, err
	}

	log.Info().
		Str("action", actionID).
		Str("approval", claims.ApprovalID).
		Str("caller", claims.CallerID()).
		Msg("executing action")

	outcome := s.engine.Run(action.Commands)
	observability.RecordExecution(actionID, "execute", outcome.Success)

	rollbackID := ""
	if action.Reversible {
		rollbackID = uuid.NewString()
	}

	s.journalAppend(ctx, journal.Entry{
		RollbackID: rollbackID,
		ActionID:   actionID,
		Kind:       "execute",
		Success:    outcome.Success,
		OutputHash: engine.TranscriptArtifacts(outcome.Transcript)[0].Hash,
		Timestamp:  time.Now(),
	})

	if b.reporter != nil {
		reporter, transcript := b.reporter, outcome.Transcript
		success := outcome.Success
		report.Dispatch(actionID, func(ctx context.Context) error {
			return reporter.Execution(ctx, token, actionID, success, transcript)
		})
	}

	result := Result{
		Success:    outcome.Success,
		Message:    outcome.Transcript,
		Artifacts:  engine.TranscriptArtifacts(outcome.Transcript),
		RollbackID: rollbackID,
	}
	if !outcome.Success {
		result.Error = outcome.Transcript
	}
	return result, nil
}

// Rollback re-runs an action's rollback command list. Single-level
// only: no new rollback id is minted, the original one is threaded
// through to the report.
func (s *Service) Rollback(ctx context.Context, actionID, rollbackID, token string) (Result, error) {
	b := s.snapshot()
	action, claims, err := s.gate(b, actionID, token)
	if err != nil {
		return Result{}, err
	}
	if !action.CanRollback() {
		return Result{}, fmt.Errorf("%w: %s", ErrNotReversible, actionID)
	}

	log.Info().
		Str("action", actionID).
		Str("rollback_id", rollbackID).
		Str("caller", claims.CallerID()).
		Msg("rolling back action")

	outcome := s.engine.Run(action.RollbackCommands)
	observability.RecordExecution(actionID, "rollback", outcome.Success)

	s.journalAppend(ctx, journal.Entry{
		RollbackID: rollbackID,
		ActionID:   actionID,
		Kind:       "rollback",
		Success:    outcome.Success,
		OutputHash: engine.TranscriptArtifacts(outcome.Transcript)[0].Hash,
		Timestamp:  time.Now(),
	})

	if b.reporter != nil {
		reporter, transcript := b.reporter, outcome.Transcript
		success := outcome.Success
		report.Dispatch(actionID+"_rollback", func(ctx context.Context) error {
			return reporter.Rollback(ctx, token, actionID, rollbackID, success, transcript)
		})
	}

	result := Result{
		Success:   outcome.Success,
		Message:   outcome.Transcript,
		Artifacts: []engine.Artifact{},
	}
	if !outcome.Success {
		result.Error = outcome.Transcript
	}
	return result, nil
}

// Health reports the capability descriptor.
func (s *Service) Health() Health {
	b := s.snapshot()
	return Health{
		Status:           "healthy",
		Version:          Version,
		Timestamp:        time.Now(),
		ActionsAvailable: b.catalog.Len(),
	}
}

// Catalog exposes the (immutable) action catalog for listing surfaces.
func (s *Service) Catalog() *catalog.Catalog {
	return s.snapshot().catalog
}

// Uptime reports time since service construction.
func (s *Service) Uptime() time.Duration {
	return time.Since(s.started)
}

func (s *Service) journalAppend(ctx context.Context, e journal.Entry) {
	if err := s.journal.Append(ctx, e); err != nil {
		log.Warn().Str("action", e.ActionID).Err(err).Msg("journal append failed")
	}
}
