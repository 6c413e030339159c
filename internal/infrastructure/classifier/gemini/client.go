package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
	"github.com/atulgupta100/tariff-watch/internal/infrastructure/resilience"
)

// Client implements the classification service against a Gemini-style
// generateContent endpoint. Every call asks for strict JSON and parses the
// model text into domain types.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, model, apiKey string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

func (c *Client) Resolve(ctx context.Context, freeText, origin, destination string) (*domain.ResolvedClassification, error) {
	respText, err := c.generateJSON(ctx, "resolve_duty", buildResolvePrompt(freeText, origin, destination))
	if err != nil {
		return nil, err
	}

	var payload struct {
		HSCode      string                     `json:"hsCode"`
		Description string                     `json:"description"`
		DutyRate    float64                    `json:"dutyRate"`
		Breakdown   []domain.DutyBreakdownLine `json:"breakdown"`
		Reasoning   []domain.ReasoningStep     `json:"reasoningPathway"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &payload); err != nil {
		return nil, fmt.Errorf("parse duty response: %w", err)
	}
	if strings.TrimSpace(payload.HSCode) == "" {
		return nil, errors.New("duty response has no hts code")
	}

	resolved := &domain.ResolvedClassification{
		HTSCode:     strings.TrimSpace(payload.HSCode),
		Description: payload.Description,
		DutyRate:    payload.DutyRate,
		Breakdown:   payload.Breakdown,
		Reasoning:   payload.Reasoning,
	}
	if len(resolved.Breakdown) == 0 {
		resolved.Breakdown = []domain.DutyBreakdownLine{{Label: "Combined duty rate", Rate: payload.DutyRate}}
	}
	return resolved, nil
}

func (c *Client) Candidates(ctx context.Context, text, origin, destination string, limit int) ([]domain.ClassificationCandidate, error) {
	if limit <= 0 {
		limit = 4
	}
	respText, err := c.generateJSON(ctx, "list_candidates", buildCandidatesPrompt(text, origin, destination, limit))
	if err != nil {
		return nil, err
	}

	var payload []struct {
		Code      string  `json:"code"`
		Label     string  `json:"label"`
		DutyRate  float64 `json:"dutyRate"`
		Reasoning string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(extractJSONArray(respText)), &payload); err != nil {
		return nil, fmt.Errorf("parse candidates response: %w", err)
	}

	candidates := make([]domain.ClassificationCandidate, 0, len(payload))
	for _, item := range payload {
		if strings.TrimSpace(item.Code) == "" {
			continue
		}
		candidates = append(candidates, domain.ClassificationCandidate{
			Code:      strings.TrimSpace(item.Code),
			Label:     item.Label,
			DutyRate:  item.DutyRate,
			Reasoning: item.Reasoning,
		})
		if len(candidates) == limit {
			break
		}
	}
	return candidates, nil
}

func (c *Client) Breakdown(ctx context.Context, code, origin, destination string) ([]domain.DutyBreakdownLine, []domain.ReasoningStep, error) {
	respText, err := c.generateJSON(ctx, "duty_breakdown", buildBreakdownPrompt(code, origin, destination))
	if err != nil {
		return nil, nil, err
	}

	var payload struct {
		Breakdown []domain.DutyBreakdownLine `json:"breakdown"`
		Reasoning []domain.ReasoningStep     `json:"reasoningPathway"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &payload); err != nil {
		return nil, nil, fmt.Errorf("parse breakdown response: %w", err)
	}
	return payload.Breakdown, payload.Reasoning, nil
}

func (c *Client) TradeIntelligence(ctx context.Context, code, destination string) (*domain.TradeIntelligence, error) {
	respText, err := c.generateJSON(ctx, "trade_intelligence", buildIntelligencePrompt(code, destination))
	if err != nil {
		return nil, err
	}

	var intel domain.TradeIntelligence
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &intel); err != nil {
		return nil, fmt.Errorf("parse intelligence response: %w", err)
	}
	return &intel, nil
}

func (c *Client) generateJSON(ctx context.Context, operation, prompt string) (string, error) {
	request := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
		},
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	call := func(ctx context.Context) error {
		return c.postJSON(ctx, c.modelPath(), request, &response, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, call, classifyServiceError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%s: empty model response", operation)
	}
	return strings.TrimSpace(response.Candidates[0].Content.Parts[0].Text), nil
}

func (c *Client) modelPath() string {
	return fmt.Sprintf("/v1beta/models/%s:generateContent", c.model)
}
