// Package observations implements the intake-and-reporting pipeline: validate
// a submission, enrich it through the oracle, persist the record, and render
// listings and spreadsheet exports of what was stored.
package observations

import (
	"context"
	"log/slog"
	"time"

	"riskwatch/internal/bootstrap/logging"
	"riskwatch/internal/domain/observation"
	"riskwatch/internal/domain/risk"
	"riskwatch/internal/errs"
	"riskwatch/internal/ports"
)

type Service struct {
	repo     ports.ObservationRepository
	uow      ports.UnitOfWork
	analyzer *Analyzer
	now      func() time.Time
}

// NewService wires the observation usecases with the store and the oracle.
func NewService(repo ports.ObservationRepository, uow ports.UnitOfWork, oracle ports.TextOracle) *Service {
	return &Service{
		repo:     repo,
		uow:      uow,
		analyzer: NewAnalyzer(oracle),
		now:      time.Now,
	}
}

type SubmitInput struct {
	Floor       string
	Location    string
	Description string
	Photo       []byte
}

type SubmitResult struct {
	ID     int64
	Record observation.Record
}

// Submit runs one synchronous intake: validation, oracle enrichment, record
// assembly, store write. Oracle failures degrade to sentinel fields and the
// record is stored anyway; validation and store failures abort.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "observations.service"))

	sub := observation.Submission{
		Floor:       in.Floor,
		Location:    in.Location,
		Description: in.Description,
		Photo:       in.Photo,
	}
	if err := sub.Validate(); err != nil {
		return SubmitResult{}, err
	}

	analysis := s.analyzer.Analyze(logCtx, in.Description, in.Floor, in.Location)
	rec := observation.NewRecord(s.now(), sub, analysis)

	id, err := s.repo.Create(ctx, rec)
	if err != nil {
		return SubmitResult{}, errs.Wrap(err, "store observation")
	}
	rec.ID = id

	logging.Info(logCtx, "observation stored",
		slog.Int64("id", id),
		slog.String("floor", rec.Floor),
		slog.Int("risk_rating", rec.RiskRating),
		slog.String("band", rec.Band().String()),
	)
	return SubmitResult{ID: id, Record: rec}, nil
}

type ListInput struct {
	Search string
	Sort   ports.SortKey
}

func (s *Service) List(ctx context.Context, in ListInput) ([]observation.Record, error) {
	records, err := s.repo.List(ctx, ports.ObservationQuery{Search: in.Search, Sort: in.Sort})
	if err != nil {
		return nil, errs.Wrap(err, "list observations")
	}
	return records, nil
}

func (s *Service) Get(ctx context.Context, id int64) (observation.Record, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logging.Info(logging.WithAttrs(ctx, slog.String("component", "observations.service")),
		"observation deleted", slog.Int64("id", id))
	return nil
}

type ExportResult struct {
	Filename string
	Data     []byte
}

// ExportReport renders every stored observation, in insertion order, into a
// downloadable spreadsheet.
func (s *Service) ExportReport(ctx context.Context) (ExportResult, error) {
	records, err := s.repo.List(ctx, ports.ObservationQuery{Sort: ports.SortOldestFirst})
	if err != nil {
		return ExportResult{}, errs.Wrap(err, "read observations for export")
	}

	data, err := BuildReport(ctx, records)
	if err != nil {
		return ExportResult{}, errs.Wrap(err, "build report")
	}

	return ExportResult{
		Filename: ReportFilename(s.now().Format("20060102")),
		Data:     data,
	}, nil
}

// SeedEntry is one pre-enriched observation loaded from a seed file. Risk
// rating is not part of the entry; it is always recomputed.
type SeedEntry struct {
	Date              string `yaml:"date"`
	Floor             string `yaml:"floor"`
	Location          string `yaml:"location"`
	Description       string `yaml:"description"`
	Impact            string `yaml:"impact"`
	Likelihood        int    `yaml:"likelihood"`
	Severity          int    `yaml:"severity"`
	CorrectiveAction  string `yaml:"corrective_action"`
	ResponsiblePerson string `yaml:"responsible_person"`
	Deadline          string `yaml:"deadline"`
}

// Seed bulk-loads entries in one transaction, bypassing the oracle. Used to
// populate demo and test databases.
func (s *Service) Seed(ctx context.Context, entries []SeedEntry) (int, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "observations.service"))

	for _, entry := range entries {
		sub := observation.Submission{
			Floor:       entry.Floor,
			Location:    entry.Location,
			Description: entry.Description,
		}
		if err := sub.Validate(); err != nil {
			return 0, err
		}
	}

	inserted := 0
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		for _, entry := range entries {
			dateStr := entry.Date
			if dateStr == "" {
				dateStr = s.now().Format(observation.DateLayout)
			}

			rec := observation.Record{
				DateStr:           dateStr,
				Floor:             entry.Floor,
				Location:          entry.Location,
				Description:       entry.Description,
				Impact:            entry.Impact,
				Likelihood:        entry.Likelihood,
				Severity:          entry.Severity,
				RiskRating:        risk.Rating(entry.Likelihood, entry.Severity),
				CorrectiveAction:  entry.CorrectiveAction,
				ResponsiblePerson: entry.ResponsiblePerson,
				Deadline:          entry.Deadline,
			}
			if _, err := s.repo.Create(txCtx, rec); err != nil {
				return errs.Wrap(err, "insert seed entry")
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logging.Info(logCtx, "seed completed", slog.Int("inserted", inserted))
	return inserted, nil
}
