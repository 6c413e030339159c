package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
	"github.com/atulgupta100/tariff-watch/internal/core/ports"
)

type SuggestionState string

const (
	SuggestionIdle    SuggestionState = "idle"
	SuggestionPending SuggestionState = "pending"
	SuggestionLoading SuggestionState = "loading"
	SuggestionReady   SuggestionState = "ready"
	SuggestionEmpty   SuggestionState = "empty"
)

const (
	DefaultSuggestionDebounce = 450 * time.Millisecond
	DefaultSuggestionMinChars = 2
	DefaultSuggestionLimit    = 5
)

// SuggestionContext carries the surrounding search form state that shapes a
// partial-code lookup.
type SuggestionContext struct {
	Query       string `json:"query,omitempty"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// SuggestionSnapshot is the externally visible engine state at one moment.
type SuggestionSnapshot struct {
	State      SuggestionState                  `json:"state"`
	Input      string                           `json:"input"`
	Visible    bool                             `json:"visible"`
	Candidates []domain.ClassificationCandidate `json:"candidates"`
}

type SuggestionOptions struct {
	Debounce time.Duration
	MinChars int
	Limit    int
	Logger   *slog.Logger
	// OnUpdate, when set, observes every visible state change.
	OnUpdate func(SuggestionSnapshot)
}

// SuggestionEngine debounces partial HTS code input and keeps a bounded
// candidate list current. Every keystroke supersedes earlier work: the
// pending timer is rearmed, any in-flight lookup is cancelled, and a late
// response for a superseded request is discarded (last request wins, decided
// by sequence number, never by arrival order).
type SuggestionEngine struct {
	classifier ports.ClassificationService
	debounce   time.Duration
	minChars   int
	limit      int
	logger     *slog.Logger
	onUpdate   func(SuggestionSnapshot)

	mu             sync.Mutex
	seq            uint64
	timer          *time.Timer
	cancelInflight context.CancelFunc
	snap           SuggestionSnapshot
	closed         bool
}

func NewSuggestionEngine(classifier ports.ClassificationService, opts SuggestionOptions) *SuggestionEngine {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultSuggestionDebounce
	}
	if opts.MinChars <= 0 {
		opts.MinChars = DefaultSuggestionMinChars
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultSuggestionLimit
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &SuggestionEngine{
		classifier: classifier,
		debounce:   opts.Debounce,
		minChars:   opts.MinChars,
		limit:      opts.Limit,
		logger:     opts.Logger,
		onUpdate:   opts.OnUpdate,
		snap:       SuggestionSnapshot{State: SuggestionIdle},
	}
}

// OnInput registers a keystroke. Input shorter than the minimum clears the
// candidate list and goes idle without issuing a request. Otherwise a lookup
// is scheduled after the debounce interval. The returned cancel function
// revokes this specific lookup if it has not been superseded already.
func (e *SuggestionEngine) OnInput(input string, sctx SuggestionContext) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return func() {}
	}

	e.seq++
	mySeq := e.seq
	e.stopTimerLocked()
	e.cancelInflightLocked()

	trimmed := strings.TrimSpace(input)
	e.snap.Input = trimmed

	if len(trimmed) < e.minChars {
		e.snap.State = SuggestionIdle
		e.snap.Visible = false
		e.snap.Candidates = nil
		e.notifyLocked()
		return func() {}
	}

	e.snap.State = SuggestionPending
	e.snap.Visible = true
	e.notifyLocked()

	e.timer = time.AfterFunc(e.debounce, func() {
		e.fire(mySeq, trimmed, sctx)
	})

	return func() { e.cancel(mySeq) }
}

// Dismiss closes the candidate panel and drops any pending or in-flight work.
func (e *SuggestionEngine) Dismiss() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++ // supersede any in-flight response
	e.stopTimerLocked()
	e.cancelInflightLocked()
	e.snap.Visible = false
	if e.snap.State == SuggestionPending || e.snap.State == SuggestionLoading {
		e.snap.State = SuggestionIdle
	}
	e.notifyLocked()
}

// Snapshot returns a copy of the current visible state.
func (e *SuggestionEngine) Snapshot() SuggestionSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := e.snap
	snap.Candidates = append([]domain.ClassificationCandidate(nil), e.snap.Candidates...)
	return snap
}

// Close cancels all outstanding work; the engine accepts no further input.
func (e *SuggestionEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.seq++
	e.stopTimerLocked()
	e.cancelInflightLocked()
	e.snap = SuggestionSnapshot{State: SuggestionIdle}
}

func (e *SuggestionEngine) cancel(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if seq != e.seq || e.closed {
		return
	}
	e.stopTimerLocked()
	e.cancelInflightLocked()
	e.snap.State = SuggestionIdle
	e.snap.Visible = false
	e.notifyLocked()
}

func (e *SuggestionEngine) fire(seq uint64, input string, sctx SuggestionContext) {
	e.mu.Lock()
	if e.closed || seq != e.seq {
		e.mu.Unlock()
		return
	}
	e.snap.State = SuggestionLoading
	e.notifyLocked()
	ctx, cancel := context.WithCancel(context.Background())
	e.cancelInflight = cancel
	e.mu.Unlock()
	defer cancel()

	text := input
	if strings.TrimSpace(sctx.Query) != "" {
		text = fmt.Sprintf("%s (partial HTS: %s)", strings.TrimSpace(sctx.Query), input)
	}

	candidates, err := e.classifier.Candidates(ctx, text, sctx.Origin, sctx.Destination, e.limit)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || seq != e.seq {
		// A newer request owns the panel; this response arrived too late.
		return
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			e.logger.Warn("suggestion_lookup_failed", "input", input, "error", err)
		}
		e.snap.State = SuggestionEmpty
		e.snap.Candidates = nil
		e.notifyLocked()
		return
	}
	if len(candidates) > e.limit {
		candidates = candidates[:e.limit]
	}
	e.snap.Candidates = candidates
	if len(candidates) == 0 {
		e.snap.State = SuggestionEmpty
	} else {
		e.snap.State = SuggestionReady
	}
	e.notifyLocked()
}

func (e *SuggestionEngine) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *SuggestionEngine) cancelInflightLocked() {
	if e.cancelInflight != nil {
		e.cancelInflight()
		e.cancelInflight = nil
	}
}

func (e *SuggestionEngine) notifyLocked() {
	if e.onUpdate == nil {
		return
	}
	snap := e.snap
	snap.Candidates = append([]domain.ClassificationCandidate(nil), e.snap.Candidates...)
	e.onUpdate(snap)
}

// SuggestionHub hands out one engine per UI session so each search box has
// its own debounce timer and candidate panel.
type SuggestionHub struct {
	classifier ports.ClassificationService
	opts       SuggestionOptions

	mu      sync.Mutex
	engines map[string]*SuggestionEngine
}

func NewSuggestionHub(classifier ports.ClassificationService, opts SuggestionOptions) *SuggestionHub {
	return &SuggestionHub{
		classifier: classifier,
		opts:       opts,
		engines:    make(map[string]*SuggestionEngine),
	}
}

// Engine returns the session's engine, creating it on first use.
func (h *SuggestionHub) Engine(sessionID string) *SuggestionEngine {
	h.mu.Lock()
	defer h.mu.Unlock()
	engine, ok := h.engines[sessionID]
	if !ok {
		engine = NewSuggestionEngine(h.classifier, h.opts)
		h.engines[sessionID] = engine
	}
	return engine
}

// Drop closes and forgets the session's engine.
func (h *SuggestionHub) Drop(sessionID string) {
	h.mu.Lock()
	engine, ok := h.engines[sessionID]
	delete(h.engines, sessionID)
	h.mu.Unlock()
	if ok {
		engine.Close()
	}
}
