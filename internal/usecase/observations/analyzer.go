package observations

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"riskwatch/internal/bootstrap/logging"
	"riskwatch/internal/domain/observation"
	"riskwatch/internal/errs"
	"riskwatch/internal/ports"
)

// Analyzer turns one oracle call into an always-populated Analysis. It never
// returns an error: every failure kind collapses into a distinct sentinel set
// so the submission can proceed and the stored record stays diagnosable.
type Analyzer struct {
	oracle ports.TextOracle
}

func NewAnalyzer(oracle ports.TextOracle) *Analyzer {
	return &Analyzer{oracle: oracle}
}

// analysisOutcome tags what happened during the oracle call. The tag only
// drives logging and sentinel selection; callers always receive the flat
// Analysis.
type analysisOutcome int

const (
	outcomeSuccess analysisOutcome = iota
	outcomeUnavailable
	outcomeParseError
	outcomeGeneralError
)

func (a *Analyzer) Analyze(ctx context.Context, text, floorInput, location string) observation.Analysis {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "analyzer"))

	if a == nil || a.oracle == nil || !a.oracle.Available() {
		logging.Warn(logCtx, "oracle not initialized, storing sentinel analysis")
		return sentinelAnalysis(outcomeUnavailable)
	}

	raw, err := a.oracle.Generate(ctx, buildPrompt(text, floorInput, location))
	if err != nil {
		logging.Error(logCtx, "oracle call failed", slog.Any("err", errs.Loggable(err)))
		return sentinelAnalysis(outcomeGeneralError)
	}

	extracted, ok := extractJSON(raw)
	if !ok {
		logging.Error(logCtx, "no JSON object in oracle response", slog.String("raw", truncate(raw, 500)))
		return sentinelAnalysis(outcomeParseError)
	}

	dec := json.NewDecoder(strings.NewReader(extracted))
	dec.UseNumber()
	var reply map[string]any
	if err := dec.Decode(&reply); err != nil {
		logging.Error(logCtx, "oracle response is not valid JSON",
			slog.Any("err", errs.Loggable(err)),
			slog.String("raw", truncate(extracted, 500)))
		return sentinelAnalysis(outcomeParseError)
	}

	likelihood, err := intField(reply, "Likelihood")
	if err != nil {
		logging.Error(logCtx, "non-numeric likelihood in oracle response", slog.Any("err", errs.Loggable(err)))
		return sentinelAnalysis(outcomeGeneralError)
	}
	severity, err := intField(reply, "Severity")
	if err != nil {
		logging.Error(logCtx, "non-numeric severity in oracle response", slog.Any("err", errs.Loggable(err)))
		return sentinelAnalysis(outcomeGeneralError)
	}

	return observation.Analysis{
		StandardizedFloor:    stringField(reply, "StandardizedFloor", floorInput),
		CorrectedDescription: stringField(reply, "CorrectedDescription", fmt.Sprintf("AI Rephrase Failed. Original: %s", text)),
		ImpactOnOperations:   stringField(reply, "ImpactOnOperations", observation.ValueUnavailable),
		Likelihood:           clampScore(likelihood),
		Severity:             clampScore(severity),
		CorrectiveAction:     stringField(reply, "CorrectiveAction", observation.ValueUnavailable),
		ResponsiblePerson:    stringField(reply, "ResponsiblePerson", observation.ValueUnavailable),
		DeadlineSuggestion:   stringField(reply, "DeadlineSuggestion", observation.ValueUnavailable),
	}
}

// sentinelAnalysis fills every string field with the sentinel for the given
// failure kind and zeroes the numeric fields, leaving the record unscored.
func sentinelAnalysis(outcome analysisOutcome) observation.Analysis {
	var sentinel string
	switch outcome {
	case outcomeUnavailable:
		sentinel = observation.SentinelNotInitialized
	case outcomeParseError:
		sentinel = observation.SentinelParsing
	default:
		sentinel = observation.SentinelGeneral
	}

	return observation.Analysis{
		StandardizedFloor:    sentinel,
		CorrectedDescription: sentinel,
		ImpactOnOperations:   sentinel,
		Likelihood:           0,
		Severity:             0,
		CorrectiveAction:     sentinel,
		ResponsiblePerson:    sentinel,
		DeadlineSuggestion:   sentinel,
	}
}

// extractJSON strips markdown code fences and, when the trimmed text is not
// already brace-delimited, slices from the first '{' to the last '}'. It
// reports false when no such pair exists.
func extractJSON(raw string) (string, bool) {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimSpace(strings.TrimPrefix(text, "```json"))
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimSpace(strings.TrimPrefix(text, "```"))
	}
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSpace(strings.TrimSuffix(text, "```"))
	}

	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return text, true
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last == -1 || last <= first {
		return "", false
	}
	return text[first : last+1], true
}

// stringField reads a string key with an independent default. Missing, empty,
// or non-string values fall back; they do not fail the call.
func stringField(reply map[string]any, key, fallback string) string {
	if v, ok := reply[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// intField coerces a numeric key to int. A missing key is 0; a present but
// non-numeric value is a hard failure for the whole call, not a silent zero.
func intField(reply map[string]any, key string) (int, error) {
	v, ok := reply[key]
	if !ok || v == nil {
		return 0, nil
	}

	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, errs.Wrapf(err, "parse %s number", key)
		}
		return int(f), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, errs.Wrapf(err, "parse %s string %q", key, n)
		}
		return int(f), nil
	default:
		return 0, fmt.Errorf("%s has non-numeric type %T", key, v)
	}
}

// clampScore bounds an oracle-provided score into [1,5], keeping 0 as the
// unscored marker. The prompt only requests the range; it is enforced here.
func clampScore(v int) int {
	switch {
	case v <= 0:
		return 0
	case v > 5:
		return 5
	default:
		return v
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
