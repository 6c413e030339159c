package domain

import "strings"

// RateRecord is a verified duty rate from the internal rate table.
// An empty Origin means the rate applies regardless of origin country.
type RateRecord struct {
	HTSCode     string  `json:"hts_code"`
	Destination string  `json:"destination"`
	Origin      string  `json:"origin,omitempty"`
	DutyRate    float64 `json:"duty_rate"`
	Description string  `json:"description"`
}

// ClassificationCandidate is one suggested HTS classification from the
// classification service. Candidates are ephemeral and never persisted.
type ClassificationCandidate struct {
	Code      string  `json:"code"`
	Label     string  `json:"label"`
	DutyRate  float64 `json:"duty_rate"`
	Reasoning string  `json:"reasoning,omitempty"`
}

type DutyBreakdownLine struct {
	Label     string  `json:"label"`
	Rate      float64 `json:"rate"`
	SourceURL string  `json:"source_url,omitempty"`
}

type ReasoningStep struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// DutySource names which tier of the lookup pipeline produced a resolution.
type DutySource string

const (
	SourceRateTable DutySource = "rate_table"
	SourceService   DutySource = "classification_service"
	SourceSelected  DutySource = "selected_candidate"
)

// ResolvedClassification is the single current outcome of a duty lookup.
// DutyRate seeds an editable override downstream; the resolution itself is
// advisory, never binding.
type ResolvedClassification struct {
	HTSCode       string              `json:"hts_code"`
	Description   string              `json:"description"`
	DutyRate      float64             `json:"duty_rate"`
	Origin        string              `json:"origin"`
	Destination   string              `json:"destination"`
	Authoritative bool                `json:"authoritative"`
	Source        DutySource          `json:"source"`
	Breakdown     []DutyBreakdownLine `json:"breakdown"`
	Reasoning     []ReasoningStep     `json:"reasoning,omitempty"`
}

// BreakdownTotal sums the breakdown line rates, in percent.
func (r *ResolvedClassification) BreakdownTotal() float64 {
	var total float64
	for _, line := range r.Breakdown {
		total += line.Rate
	}
	return total
}

// SearchFingerprint identifies one top-level duty search. Two searches with
// equal fingerprints are the same search; re-running the second is redundant.
type SearchFingerprint struct {
	Query       string
	HTSCode     string
	Origin      string
	Destination string
}

// NormalizeHTSCode strips formatting punctuation from an HTS code so that
// "8711.60.00" and "871160.00" compare equal.
func NormalizeHTSCode(code string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		default:
			return -1
		}
	}, strings.TrimSpace(code))
}

// TradeIntelligence is a market snapshot for an HTS code entering a
// destination, produced by the classification service.
type TradeIntelligence struct {
	TwelveMonthVolume  string   `json:"twelve_month_volume"`
	TopOriginCountries []string `json:"top_origin_countries"`
	ImporterProfile    string   `json:"importer_profile"`
	MarketRiskLevel    string   `json:"market_risk_level"`
	Summary            string   `json:"summary"`
}
