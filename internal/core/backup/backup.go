// Package backup reconciles a remote bookmark account into the local store.
//
// A run goes through five stages, strictly in order, and stops at the first
// failing one:
//
//	mode       read the checkpoint and pick a full or incremental fetch
//	bookmarks  fetch bookmarks and insert the ones not stored yet
//	tags       fetch the tag vocabulary and insert unknown tags
//	links      link every fetched bookmark to its tags
//	finalize   report labels that matched no tag
//
// Each storage stage commits as one transaction, so an interrupted run leaves
// earlier stages in place and can simply be started again: every insert and
// link is idempotent.
package backup

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/agentultra/deliciousbackup/internal/core/checkpoint"
	"github.com/agentultra/deliciousbackup/internal/core/db"
	"github.com/agentultra/deliciousbackup/internal/core/source"
)

var (
	// ErrSourceUnavailable wraps every failure of the bookmark source.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrStorage wraps every failure of the local store.
	ErrStorage = errors.New("storage error")
	// ErrCheckpoint wraps failures to read or write the checkpoint.
	ErrCheckpoint = errors.New("checkpoint error")
)

// Stage identifies one step of a run.
type Stage int

const (
	StageMode Stage = iota
	StageBookmarks
	StageTags
	StageLinks
	StageFinalize
)

func (s Stage) String() string {
	switch s {
	case StageMode:
		return "mode"
	case StageBookmarks:
		return "bookmarks"
	case StageTags:
		return "tags"
	case StageLinks:
		return "links"
	case StageFinalize:
		return "finalize"
	default:
		return "unknown"
	}
}

// Mode is the kind of bookmark fetch a run performs.
type Mode int

const (
	ModeFull Mode = iota
	ModeIncremental
)

func (m Mode) String() string {
	if m == ModeIncremental {
		return "incremental"
	}
	return "full"
}

// CheckpointMode controls when a run records its checkpoint.
type CheckpointMode int

const (
	// CheckpointEarly writes the checkpoint before fetching anything, and
	// only when none exists yet. A run that fails afterwards still leaves a
	// checkpoint behind.
	CheckpointEarly CheckpointMode = iota
	// CheckpointStrict writes the time the run started, and only after every
	// stage succeeded.
	CheckpointStrict
)

func (m CheckpointMode) String() string {
	if m == CheckpointStrict {
		return "strict"
	}
	return "early"
}

// Observer receives progress notifications. It is called synchronously from
// the run and must not block for long.
type Observer interface {
	// StageStarted is called when a stage begins, before any fetch.
	StageStarted(stage Stage)
	// Progress is called after each processed item of a stage.
	Progress(stage Stage, current, total int)
}

// Engine runs backups of one account into one store.
type Engine struct {
	store       *db.DB
	src         source.Source
	checkpoints checkpoint.Store
	logger      *log.Logger
	observer    Observer
	cpMode      CheckpointMode
	now         func() time.Time
	matchers    []matcher
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for run diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver sets the progress observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithCheckpointMode selects when the checkpoint is written.
func WithCheckpointMode(m CheckpointMode) Option {
	return func(e *Engine) {
		e.cpMode = m
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New returns an Engine. The store must be migrated.
//
// If no logger is given, a default logger writing to stderr is used.
func New(store *db.DB, src source.Source, cp checkpoint.Store, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		src:         src,
		checkpoints: cp,
		logger:      log.New(os.Stderr, "[backup] ", log.LstdFlags),
		cpMode:      CheckpointEarly,
		now:         time.Now,
		matchers:    defaultMatchers(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
