package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"riskwatch/internal/domain/observation"
	"riskwatch/internal/errs"
	"riskwatch/internal/infrastructure/persistence/sqlite/model"
	"riskwatch/internal/ports"
)

type ObservationRepository struct {
	db *gorm.DB
}

var _ ports.ObservationRepository = (*ObservationRepository)(nil)

func NewObservationRepository(db *gorm.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

func (r *ObservationRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *ObservationRepository) Create(ctx context.Context, rec observation.Record) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	row := toRow(rec)
	row.ID = 0
	if err := db.Create(&row).Error; err != nil {
		return 0, errs.Wrap(err, "insert observation")
	}
	return row.ID, nil
}

func (r *ObservationRepository) List(ctx context.Context, query ports.ObservationQuery) ([]observation.Record, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	q := db.Model(&model.Observation{})
	if search := strings.TrimSpace(query.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where(
			"lower(description) LIKE ? OR lower(location) LIKE ? OR lower(floor) LIKE ?",
			like, like, like,
		)
	}

	switch query.Sort {
	case ports.SortOldestFirst:
		q = q.Order("id asc")
	case ports.SortHighestRiskFirst:
		q = q.Order("risk_rating desc").Order("id asc")
	default:
		q = q.Order("id desc")
	}

	var rows []model.Observation
	if err := q.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query observations")
	}

	records := make([]observation.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, toRecord(row))
	}
	return records, nil
}

func (r *ObservationRepository) Get(ctx context.Context, id int64) (observation.Record, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return observation.Record{}, err
	}

	var row model.Observation
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return observation.Record{}, ports.ErrObservationNotFound
		}
		return observation.Record{}, errs.Wrap(err, "query observation by id")
	}
	return toRecord(row), nil
}

func (r *ObservationRepository) Delete(ctx context.Context, id int64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	res := db.Where("id = ?", id).Delete(&model.Observation{})
	if res.Error != nil {
		return errs.Wrap(res.Error, "delete observation")
	}
	if res.RowsAffected == 0 {
		return ports.ErrObservationNotFound
	}
	return nil
}

func toRow(rec observation.Record) model.Observation {
	return model.Observation{
		ID:                rec.ID,
		DateStr:           rec.DateStr,
		Floor:             rec.Floor,
		Location:          rec.Location,
		Description:       rec.Description,
		Impact:            rec.Impact,
		Likelihood:        rec.Likelihood,
		Severity:          rec.Severity,
		RiskRating:        rec.RiskRating,
		CorrectiveAction:  rec.CorrectiveAction,
		ResponsiblePerson: rec.ResponsiblePerson,
		Deadline:          rec.Deadline,
		PhotoBytes:        rec.PhotoBytes,
	}
}

func toRecord(row model.Observation) observation.Record {
	return observation.Record{
		ID:                row.ID,
		DateStr:           row.DateStr,
		Floor:             row.Floor,
		Location:          row.Location,
		Description:       row.Description,
		Impact:            row.Impact,
		Likelihood:        row.Likelihood,
		Severity:          row.Severity,
		RiskRating:        row.RiskRating,
		CorrectiveAction:  row.CorrectiveAction,
		ResponsiblePerson: row.ResponsiblePerson,
		Deadline:          row.Deadline,
		PhotoBytes:        row.PhotoBytes,
	}
}
