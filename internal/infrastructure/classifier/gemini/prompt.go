package gemini

import (
	"fmt"
	"strings"
)

func buildResolvePrompt(query, origin, destination string) string {
	return fmt.Sprintf(`Act as a senior customs analyst. Provide the HTS code and the TOTAL combined duty rate for "%s" from %s to %s.
Itemize every layer in a 'breakdown' array of objects with 'label', 'rate', and 'sourceUrl' pointing at the official government source (usitc.gov, ustr.gov, or the local customs bureau).
Provide a 'reasoningPathway' array of objects with 'title' and 'detail' explaining the legal classification logic.
Return a strict JSON object with keys: hsCode, description, dutyRate, breakdown, reasoningPathway. No markdown, no extra keys.`,
		query, origin, destination)
}

func buildCandidatesPrompt(text, origin, destination string, limit int) string {
	return fmt.Sprintf(`Act as a customs broker. Identify the top %d most likely HTS classifications for the product "%s" shipped from %s to %s.
Return a strict JSON array of objects with keys: code, label, dutyRate, reasoning. No markdown.`,
		limit, text, origin, destination)
}

func buildBreakdownPrompt(code, origin, destination string) string {
	return fmt.Sprintf(`Provide the itemized duty breakdown and official sourceUrl (e.g. from USITC) for HTS Code %s from %s to %s.
Return a strict JSON object with a 'breakdown' array (label, rate, sourceUrl) and a 'reasoningPathway' array (title, detail). No markdown.`,
		code, origin, destination)
}

func buildIntelligencePrompt(code, destination string) string {
	return fmt.Sprintf(`Analyze global trade data for HTS Code %s entering %s over the last 12 months.
Return a strict JSON object with keys: twelve_month_volume, top_origin_countries, importer_profile, market_risk_level (Low, Medium or High), summary. No markdown.`,
		code, destination)
}

// extractJSONObject trims any stray prose or code fences around the first
// JSON object in the model output.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func extractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
