// Package triage implements the feedback triage engine: deterministic
// category classification (phan_anh vs khieu_nai) with a statistical
// fallback, plus severity grading with an optional external oracle.
package triage

import (
	"context"
	"log"

	"triagebot/internal/domain"
	"triagebot/internal/integrations/oracle"
)

// Decision methods recorded on a Classification.
const (
	MethodRules       = "rules"
	MethodStatistical = "statistical"
)

// Confidence gates of the fallback chain: confident rules beat the
// model, a confident model beats unconfident rules, and the rules are
// always the decision of last resort.
const (
	ruleConfidenceThreshold  = 0.70
	modelConfidenceThreshold = 0.75
)

// Classifier composes the rule engine, the optional statistical model
// and the optional severity oracle into one classify call. All fields
// are read-only after construction, so a single instance is safe for
// concurrent callers.
type Classifier struct {
	rules  *RuleSet
	model  *Model
	oracle oracle.Analyzer
	logger *log.Logger
}

// NewClassifier wires the pipeline. model and o may be nil; rules nil
// means the built-in dictionaries.
func NewClassifier(rules *RuleSet, model *Model, o oracle.Analyzer, logger *log.Logger) *Classifier {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Classifier{
		rules:  rules,
		model:  model,
		oracle: o,
		logger: logger,
	}
}

// Classify triages one submission. It is a total function over its two
// string inputs: every path degrades instead of failing, and identical
// input yields identical output on the rule and statistical paths.
func (c *Classifier) Classify(ctx context.Context, title, description string) domain.Classification {
	label, confidence, terms := classifyByRules(&c.rules.Keyword, title, description)
	method := MethodRules

	if confidence < ruleConfidenceThreshold && c.model != nil {
		text := Normalize(title + " " + description)
		modelLabel, modelConf, modelTerms := c.model.Predict(text)
		if modelConf >= modelConfidenceThreshold {
			label, confidence, terms = modelLabel, modelConf, modelTerms
			method = MethodStatistical
		}
	}

	severity, severityConf := c.ClassifySeverity(ctx, title, description)

	result := domain.Classification{
		Label:              label,
		Confidence:         confidence,
		ImportantTerms:     terms,
		Method:             method,
		Severity:           severity,
		SeverityConfidence: severityConf,
	}
	c.logger.Printf("triage classified label=%s confidence=%.2f method=%s severity=%s severity_confidence=%.2f terms=%d",
		result.Label, result.Confidence, result.Method, result.Severity, result.SeverityConfidence, len(result.ImportantTerms))
	return result
}

// ClassifySeverity asks the configured oracle first; any answer is
// adopted verbatim. No oracle, or no answer, falls back to the
// rule-based severity scan. A single attempt is made per call.
func (c *Classifier) ClassifySeverity(ctx context.Context, title, description string) (string, float64) {
	if c.oracle != nil {
		if judgment, ok := c.oracle.AnalyzeFeedback(ctx, title, description); ok {
			return judgment.Severity, judgment.Confidence
		}
	}
	return classifySeverity(&c.rules.Severity, title, description)
}
