package triage

import "triagebot/internal/domain"

// classifySeverity is the rule-based severity scan, used when no
// external oracle answer is available. One high-pattern match is
// already enough to cross the 0.85 "high and trustworthy" line;
// additional distinct matches nudge it up to the 0.95 cap.
func classifySeverity(rules *SeverityRules, title, description string) (string, float64) {
	text := Normalize(title + " " + description)
	textNoAcc := StripDiacritics(text)

	highMatches := countDistinctMatches(rules.HighPatterns, text, textNoAcc)
	mediumMatches := countDistinctMatches(rules.MediumPatterns, text, textNoAcc)

	switch {
	case highMatches > 0:
		confidence := 0.85 + 0.03*float64(highMatches-1)
		if confidence > 0.95 {
			confidence = 0.95
		}
		return domain.SeverityHigh, confidence
	case mediumMatches > 0:
		confidence := 0.70 + 0.05*float64(mediumMatches)
		if confidence > 0.85 {
			confidence = 0.85
		}
		return domain.SeverityMedium, confidence
	default:
		return domain.SeverityLow, 0.65
	}
}

func countDistinctMatches(patterns []string, text, textNoAcc string) int {
	count := 0
	for _, p := range patterns {
		if matchesEither(text, textNoAcc, p) {
			count++
		}
	}
	return count
}
