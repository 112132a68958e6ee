package triage

import (
	"strings"

	"triagebot/internal/domain"
)

// Rule-tier weights. Title hits count most; grievance tiers outweigh
// report tiers so a formal complaint is not drowned out by routine
// observation vocabulary.
const (
	titleWeight            = 5
	grievanceStrongWeight  = 4
	reportStrongWeight     = 3
	grievanceKeywordWeight = 2
	reportKeywordWeight    = 1
)

const maxEvidenceTerms = 3

// classifyByRules runs the weighted keyword scan over title and
// description. The title is duplicated into the working text to double
// its weight, and every phrase is matched both as written and in
// accent-stripped form. A zero total score falls back to phan_anh at
// 0.6 confidence with no evidence.
func classifyByRules(rules *KeywordRules, title, description string) (string, float64, []string) {
	text := Normalize(title + " " + title + " " + description)
	textNoAcc := StripDiacritics(text)

	titleLower := strings.ToLower(title)
	titleNoAcc := StripDiacritics(titleLower)

	categories := []struct {
		label         string
		rules         CategoryRules
		strongWeight  int
		keywordWeight int
	}{
		{domain.LabelGrievance, rules.Grievance, grievanceStrongWeight, grievanceKeywordWeight},
		{domain.LabelReport, rules.Report, reportStrongWeight, reportKeywordWeight},
	}

	scores := make(map[string]int, 2)
	var matched []string
	seen := make(map[string]bool)
	addMatch := func(phrase, annotated string) {
		if !seen[phrase] {
			seen[phrase] = true
			matched = append(matched, annotated)
		}
	}

	// Strong patterns found in the title itself get the top weight.
	for _, cat := range categories {
		for _, pattern := range cat.rules.StrongPatterns {
			if matchesEither(titleLower, titleNoAcc, pattern) {
				scores[cat.label] += titleWeight
				addMatch(pattern, pattern+" (tiêu đề)")
			}
		}
	}

	for _, cat := range categories {
		for _, pattern := range cat.rules.StrongPatterns {
			if matchesEither(text, textNoAcc, pattern) {
				scores[cat.label] += cat.strongWeight
				addMatch(pattern, pattern)
			}
		}
	}

	for _, cat := range categories {
		for _, keyword := range cat.rules.Keywords {
			if matchesEither(text, textNoAcc, keyword) {
				scores[cat.label] += cat.keywordWeight
				addMatch(keyword, keyword)
			}
		}
	}

	grievance := scores[domain.LabelGrievance]
	report := scores[domain.LabelReport]
	total := grievance + report
	if total == 0 {
		// No signal at all: default to the administrative category.
		return domain.LabelReport, 0.6, nil
	}

	// Exact ties go to the grievance side.
	label := domain.LabelReport
	margin := report - grievance
	if grievance >= report {
		label = domain.LabelGrievance
		margin = grievance - report
	}

	confidence := 0.6 + (float64(margin)/float64(total))*0.35
	if confidence > 0.95 {
		confidence = 0.95
	}

	if len(matched) > maxEvidenceTerms {
		matched = matched[:maxEvidenceTerms]
	}
	return label, confidence, matched
}

// matchesEither reports whether the phrase occurs in the text either as
// written or with diacritics stripped on both sides. Matching is
// deliberately substring-based, not word-boundary-based, to mirror the
// portal's production behavior.
func matchesEither(text, textNoAcc, phrase string) bool {
	if strings.Contains(text, phrase) {
		return true
	}
	return strings.Contains(textNoAcc, StripDiacritics(phrase))
}
