// Package observation defines the enriched safety-observation record, the
// analysis contract filled in by the oracle, and submission validation.
package observation

import (
	"encoding/base64"
	"time"

	"riskwatch/internal/domain/risk"
)

// DateLayout renders creation dates the way they are shown and exported,
// e.g. "04-Sep-2026".
const DateLayout = "02-Jan-2006"

// Sentinel values substituted for analysis fields whose true value could not
// be obtained. Each failure kind gets its own marker so stored records can be
// triaged by inspection.
const (
	SentinelNotInitialized = "AI Error - Model Not Initialized"
	SentinelParsing        = "AI Error (Parsing)"
	SentinelGeneral        = "AI Error (General)"

	// ValueUnavailable is the per-field default for keys absent from an
	// otherwise valid oracle reply.
	ValueUnavailable = "N/A"
)

// Analysis is the always-populated output of the enrichment step. Every
// field carries either an oracle-provided value, a per-field default, or a
// failure sentinel; callers never see a partially filled Analysis.
type Analysis struct {
	StandardizedFloor    string
	CorrectedDescription string
	ImpactOnOperations   string
	Likelihood           int
	Severity             int
	CorrectiveAction     string
	ResponsiblePerson    string
	DeadlineSuggestion   string
}

// Record is the persisted, enriched observation. Records are immutable after
// creation; there is no update operation, only delete.
type Record struct {
	ID                int64
	DateStr           string
	Floor             string
	Location          string
	Description       string
	Impact            string
	Likelihood        int
	Severity          int
	RiskRating        int
	CorrectiveAction  string
	ResponsiblePerson string
	Deadline          string
	PhotoBytes        []byte
}

// NewRecord merges raw submission input with the analysis into a Record.
// RiskRating is always recomputed from Likelihood and Severity, never taken
// from the oracle.
func NewRecord(now time.Time, sub Submission, a Analysis) Record {
	return Record{
		DateStr:           now.Format(DateLayout),
		Floor:             a.StandardizedFloor,
		Location:          sub.Location,
		Description:       a.CorrectedDescription,
		Impact:            a.ImpactOnOperations,
		Likelihood:        a.Likelihood,
		Severity:          a.Severity,
		RiskRating:        risk.Rating(a.Likelihood, a.Severity),
		CorrectiveAction:  a.CorrectiveAction,
		ResponsiblePerson: a.ResponsiblePerson,
		Deadline:          a.DeadlineSuggestion,
		PhotoBytes:        sub.Photo,
	}
}

// Band classifies the record's risk rating.
func (r Record) Band() risk.Band {
	return risk.BandFor(r.RiskRating)
}

// PhotoBase64 exposes the photo for display layers. Records without a photo
// return "" and the display layer substitutes a placeholder.
func (r Record) PhotoBase64() string {
	if len(r.PhotoBytes) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(r.PhotoBytes)
}
