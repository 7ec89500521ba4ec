package observations

import (
	"context"
	"errors"
	"strings"
	"testing"

	"riskwatch/internal/domain/observation"
	"riskwatch/internal/domain/risk"
)

type fakeOracle struct {
	available bool
	reply     string
	err       error
	prompt    string
}

func (f *fakeOracle) Available() bool { return f.available }

func (f *fakeOracle) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

const cleanReply = `{"StandardizedFloor":"groundfloor","CorrectedDescription":"Spill near entrance.","ImpactOnOperations":"Slip hazard.","Likelihood":3,"Severity":4,"CorrectiveAction":"Place wet-floor sign.","ResponsiblePerson":"chief engineer","DeadlineSuggestion":"Immediately"}`

func TestAnalyzeParsesCleanReply(t *testing.T) {
	analyzer := NewAnalyzer(&fakeOracle{available: true, reply: cleanReply})

	a := analyzer.Analyze(context.Background(), "spill near entrance", "G", "entrance")

	if a.StandardizedFloor != "groundfloor" {
		t.Fatalf("StandardizedFloor = %q", a.StandardizedFloor)
	}
	if a.CorrectedDescription != "Spill near entrance." {
		t.Fatalf("CorrectedDescription = %q", a.CorrectedDescription)
	}
	if a.ImpactOnOperations != "Slip hazard." {
		t.Fatalf("ImpactOnOperations = %q", a.ImpactOnOperations)
	}
	if a.Likelihood != 3 || a.Severity != 4 {
		t.Fatalf("scores = %d/%d", a.Likelihood, a.Severity)
	}
	if a.CorrectiveAction != "Place wet-floor sign." {
		t.Fatalf("CorrectiveAction = %q", a.CorrectiveAction)
	}
	if a.ResponsiblePerson != "chief engineer" {
		t.Fatalf("ResponsiblePerson = %q", a.ResponsiblePerson)
	}
	if a.DeadlineSuggestion != "Immediately" {
		t.Fatalf("DeadlineSuggestion = %q", a.DeadlineSuggestion)
	}

	rating := risk.Rating(a.Likelihood, a.Severity)
	if rating != 12 || risk.BandFor(rating) != risk.High {
		t.Fatalf("rating = %d band = %v", rating, risk.BandFor(rating))
	}
}

func TestAnalyzeStripsCodeFence(t *testing.T) {
	fenced := "```json\n" + cleanReply + "\n```"
	analyzer := NewAnalyzer(&fakeOracle{available: true, reply: fenced})

	a := analyzer.Analyze(context.Background(), "spill", "G", "entrance")
	if a.StandardizedFloor != "groundfloor" || a.Likelihood != 3 {
		t.Fatalf("fenced reply parsed differently: %+v", a)
	}
}

func TestAnalyzeSlicesProseWrappedJSON(t *testing.T) {
	wrapped := "Here is the analysis you asked for:\n" + cleanReply + "\nLet me know if you need anything else."
	analyzer := NewAnalyzer(&fakeOracle{available: true, reply: wrapped})

	a := analyzer.Analyze(context.Background(), "spill", "G", "entrance")
	if a.Severity != 4 || a.ResponsiblePerson != "chief engineer" {
		t.Fatalf("prose-wrapped reply not recovered: %+v", a)
	}
}

func TestAnalyzeOracleUnavailable(t *testing.T) {
	analyzer := NewAnalyzer(&fakeOracle{available: false})

	a := analyzer.Analyze(context.Background(), "", "", "")
	assertAllSentinel(t, a, observation.SentinelNotInitialized)
}

func TestAnalyzeNilOracle(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	a := analyzer.Analyze(context.Background(), "spill", "G", "entrance")
	assertAllSentinel(t, a, observation.SentinelNotInitialized)
}

func TestAnalyzeNoJSONInReply(t *testing.T) {
	analyzer := NewAnalyzer(&fakeOracle{available: true, reply: "I am sorry, I cannot help with that."})

	a := analyzer.Analyze(context.Background(), "spill", "G", "entrance")
	assertAllSentinel(t, a, observation.SentinelParsing)
}

func TestAnalyzeMalformedJSON(t *testing.T) {
	analyzer := NewAnalyzer(&fakeOracle{available: true, reply: `{"StandardizedFloor": "groundfloor",`})

	a := analyzer.Analyze(context.Background(), "spill", "G", "entrance")
	if a.StandardizedFloor != observation.SentinelParsing {
		t.Fatalf("StandardizedFloor = %q, want parsing sentinel", a.StandardizedFloor)
	}
}

func TestAnalyzeOracleError(t *testing.T) {
	analyzer := NewAnalyzer(&fakeOracle{available: true, err: errors.New("connection reset")})

	a := analyzer.Analyze(context.Background(), "spill", "G", "entrance")
	assertAllSentinel(t, a, observation.SentinelGeneral)
}

func TestAnalyzeNonNumericScoreIsGeneralError(t *testing.T) {
	reply := `{"StandardizedFloor":"groundfloor","Likelihood":"often","Severity":2}`
	analyzer := NewAnalyzer(&fakeOracle{available: true, reply: reply})

	a := analyzer.Analyze(context.Background(), "spill", "G", "entrance")
	assertAllSentinel(t, a, observation.SentinelGeneral)
}

func TestAnalyzeNumericStringScoresAreCoerced(t *testing.T) {
	reply := `{"Likelihood":"3","Severity":"4"}`
	analyzer := NewAnalyzer(&fakeOracle{available: true, reply: reply})

	a := analyzer.Analyze(context.Background(), "spill", "G", "entrance")
	if a.Likelihood != 3 || a.Severity != 4 {
		t.Fatalf("coerced scores = %d/%d", a.Likelihood, a.Severity)
	}
}

func TestAnalyzeMissingKeysUseIndependentDefaults(t *testing.T) {
	analyzer := NewAnalyzer(&fakeOracle{available: true, reply: `{"Severity":5}`})

	a := analyzer.Analyze(context.Background(), "wet stairs", "lvl 2", "stairwell")
	if a.StandardizedFloor != "lvl 2" {
		t.Fatalf("StandardizedFloor = %q, want raw floor input", a.StandardizedFloor)
	}
	if !strings.Contains(a.CorrectedDescription, "wet stairs") {
		t.Fatalf("CorrectedDescription = %q, want original text embedded", a.CorrectedDescription)
	}
	if a.ImpactOnOperations != observation.ValueUnavailable {
		t.Fatalf("ImpactOnOperations = %q", a.ImpactOnOperations)
	}
	if a.Likelihood != 0 || a.Severity != 5 {
		t.Fatalf("scores = %d/%d", a.Likelihood, a.Severity)
	}
}

func TestAnalyzeClampsOutOfRangeScores(t *testing.T) {
	reply := `{"Likelihood":7,"Severity":-2}`
	analyzer := NewAnalyzer(&fakeOracle{available: true, reply: reply})

	a := analyzer.Analyze(context.Background(), "spill", "G", "entrance")
	if a.Likelihood != 5 {
		t.Fatalf("Likelihood = %d, want clamped 5", a.Likelihood)
	}
	if a.Severity != 0 {
		t.Fatalf("Severity = %d, want 0", a.Severity)
	}
}

func TestPromptEmbedsInputsAndEnumerations(t *testing.T) {
	oracle := &fakeOracle{available: true, reply: cleanReply}
	analyzer := NewAnalyzer(oracle)
	analyzer.Analyze(context.Background(), "broken handrail", "B2", "fire escape")

	for _, want := range []string{"broken handrail", "B2", "fire escape"} {
		if !strings.Contains(oracle.prompt, want) {
			t.Fatalf("prompt missing input %q", want)
		}
	}
	for _, floor := range observation.StandardFloors {
		if !strings.Contains(oracle.prompt, floor) {
			t.Fatalf("prompt missing floor label %q", floor)
		}
	}
	for _, role := range observation.ResponsibleRoles {
		if !strings.Contains(oracle.prompt, role) {
			t.Fatalf("prompt missing role %q", role)
		}
	}
	if !strings.Contains(oracle.prompt, "JSON") {
		t.Fatal("prompt does not demand JSON output")
	}
}

func assertAllSentinel(t *testing.T, a observation.Analysis, sentinel string) {
	t.Helper()

	fields := map[string]string{
		"StandardizedFloor":    a.StandardizedFloor,
		"CorrectedDescription": a.CorrectedDescription,
		"ImpactOnOperations":   a.ImpactOnOperations,
		"CorrectiveAction":     a.CorrectiveAction,
		"ResponsiblePerson":    a.ResponsiblePerson,
		"DeadlineSuggestion":   a.DeadlineSuggestion,
	}
	for name, got := range fields {
		if got != sentinel {
			t.Fatalf("%s = %q, want %q", name, got, sentinel)
		}
	}
	if a.Likelihood != 0 || a.Severity != 0 {
		t.Fatalf("scores = %d/%d, want zeroed", a.Likelihood, a.Severity)
	}
}
