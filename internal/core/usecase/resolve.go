package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
	"github.com/atulgupta100/tariff-watch/internal/core/ports"
)

// ResolveUseCase orchestrates the tiered duty-rate lookup: verified rate
// table first, classification service as fallback. A successful resolution
// records its fingerprint so an identical re-search is answered from the
// cached result without external calls. Overlapping resolutions for the same
// fingerprint coalesce onto one in-flight call.
type ResolveUseCase struct {
	table      ports.RateTable
	classifier ports.ClassificationService
	session    *Session
	logger     *slog.Logger

	mu       sync.Mutex
	last     *domain.ResolvedClassification
	inflight map[domain.SearchFingerprint]*inflightResolve
}

type inflightResolve struct {
	done   chan struct{}
	result *domain.ResolvedClassification
	err    error
}

func NewResolveUseCase(
	table ports.RateTable,
	classifier ports.ClassificationService,
	session *Session,
	logger *slog.Logger,
) *ResolveUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if session == nil {
		session = NewSession()
	}
	return &ResolveUseCase{
		table:      table,
		classifier: classifier,
		session:    session,
		logger:     logger,
		inflight:   make(map[domain.SearchFingerprint]*inflightResolve),
	}
}

// Resolve runs the full tiered lookup for a free-text query and/or HTS code.
// An empty search is a no-op signalled as domain.ErrInvalidInput. Unless
// force is set, a fingerprint equal to the last successful one returns the
// cached classification without touching the rate table or the service.
func (uc *ResolveUseCase) Resolve(
	ctx context.Context,
	query, htsCode, origin, destination string,
	force bool,
) (*domain.ResolvedClassification, error) {
	query = strings.TrimSpace(query)
	htsCode = strings.TrimSpace(htsCode)
	if query == "" && htsCode == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "resolve duty", errors.New("empty query and hts code"))
	}

	fp := domain.SearchFingerprint{
		Query:       query,
		HTSCode:     htsCode,
		Origin:      origin,
		Destination: destination,
	}

	uc.mu.Lock()
	if !force && uc.last != nil && uc.session.Matches(fp) {
		cached := uc.last
		uc.mu.Unlock()
		return cached, nil
	}
	if call, ok := uc.inflight[fp]; ok {
		uc.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-call.done:
			return call.result, call.err
		}
	}
	call := &inflightResolve{done: make(chan struct{})}
	uc.inflight[fp] = call
	uc.mu.Unlock()

	result, err := uc.resolveOnce(ctx, query, htsCode, origin, destination)

	uc.mu.Lock()
	delete(uc.inflight, fp)
	if err == nil {
		uc.last = result
		uc.session.RecordSuccess(fp)
	}
	uc.mu.Unlock()

	call.result, call.err = result, err
	close(call.done)
	return result, err
}

func (uc *ResolveUseCase) resolveOnce(
	ctx context.Context,
	query, htsCode, origin, destination string,
) (*domain.ResolvedClassification, error) {
	if htsCode != "" {
		if rec := uc.findVerified(ctx, htsCode, destination, origin); rec != nil {
			return verifiedResolution(rec, origin, destination), nil
		}
	}

	text := query
	switch {
	case query == "":
		text = htsCode
	case htsCode != "":
		text = fmt.Sprintf("%s (HTS: %s)", query, htsCode)
	}

	resolved, err := uc.classifier.Resolve(ctx, text, origin, destination)
	if err != nil {
		if domain.IsKind(err, domain.ErrTemporary) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrService, "resolve duty", err)
	}
	if resolved == nil || resolved.HTSCode == "" {
		return nil, domain.WrapError(domain.ErrNoMatch, "resolve duty", errors.New("classification service returned no answer"))
	}

	resolved.Origin = origin
	resolved.Destination = destination
	resolved.Authoritative = false
	resolved.Source = domain.SourceService
	return resolved, nil
}

// ResolveSelected re-resolves a code chosen from a candidate list. The rate
// table is consulted first; on a miss the service is asked only for the rate
// composition, since the code is already fixed. Selection does not update
// the search fingerprint.
func (uc *ResolveUseCase) ResolveSelected(
	ctx context.Context,
	candidate domain.ClassificationCandidate,
	origin, destination string,
) (*domain.ResolvedClassification, error) {
	code := strings.TrimSpace(candidate.Code)
	if code == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "resolve selected", errors.New("empty candidate code"))
	}

	if rec := uc.findVerified(ctx, code, destination, origin); rec != nil {
		resolved := verifiedResolution(rec, origin, destination)
		uc.setLast(resolved)
		return resolved, nil
	}

	breakdown, reasoning, err := uc.classifier.Breakdown(ctx, code, origin, destination)
	if err != nil {
		if domain.IsKind(err, domain.ErrTemporary) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrService, "resolve selected", err)
	}

	resolved := &domain.ResolvedClassification{
		HTSCode:     code,
		Description: candidate.Label,
		Origin:      origin,
		Destination: destination,
		Source:      domain.SourceSelected,
		Breakdown:   breakdown,
		Reasoning:   reasoning,
	}
	if len(breakdown) == 0 {
		resolved.DutyRate = candidate.DutyRate
		resolved.Breakdown = []domain.DutyBreakdownLine{{Label: candidate.Label, Rate: candidate.DutyRate}}
	} else {
		resolved.DutyRate = resolved.BreakdownTotal()
	}
	uc.setLast(resolved)
	return resolved, nil
}

// Alternates lists alternate classification strategies for a product query.
func (uc *ResolveUseCase) Alternates(
	ctx context.Context,
	query, origin, destination string,
	limit int,
) ([]domain.ClassificationCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list alternates", errors.New("empty query"))
	}
	candidates, err := uc.classifier.Candidates(ctx, query, origin, destination, limit)
	if err != nil {
		if domain.IsKind(err, domain.ErrTemporary) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrService, "list alternates", err)
	}
	return candidates, nil
}

// findVerified runs the two-tier rate table match. Table read failures are
// logged and treated as a miss so the service fallback still runs.
func (uc *ResolveUseCase) findVerified(ctx context.Context, code, destination, origin string) *domain.RateRecord {
	rec, err := uc.table.Find(ctx, code, destination, origin)
	if err != nil {
		if !domain.IsKind(err, domain.ErrNoMatch) {
			uc.logger.Warn("rate_table_lookup_failed", "code", code, "destination", destination, "error", err)
		}
		return nil
	}
	return rec
}

func (uc *ResolveUseCase) setLast(resolved *domain.ResolvedClassification) {
	uc.mu.Lock()
	uc.last = resolved
	uc.mu.Unlock()
}

func verifiedResolution(rec *domain.RateRecord, origin, destination string) *domain.ResolvedClassification {
	return &domain.ResolvedClassification{
		HTSCode:       rec.HTSCode,
		Description:   rec.Description,
		DutyRate:      rec.DutyRate,
		Origin:        origin,
		Destination:   destination,
		Authoritative: true,
		Source:        domain.SourceRateTable,
		Breakdown: []domain.DutyBreakdownLine{
			{Label: "Verified database rate", Rate: rec.DutyRate},
		},
		Reasoning: []domain.ReasoningStep{
			{Title: "Internal policy", Detail: "Rate retrieved from the verified internal tariff table."},
		},
	}
}
