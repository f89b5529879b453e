package metrics

import (
	"context"

	"gorm.io/gorm"

	"github.com/calldeck/backend/internal/domain"
	"github.com/calldeck/backend/internal/platform/apierr"
	"github.com/calldeck/backend/internal/platform/logger"
)

// SampleRepo is the metrics store: validated inserts, equality-filtered
// reads, and scoped deletes against the metrics table. Samples are never
// updated, so no update method exists.
type SampleRepo interface {
	// Create validates the input and persists exactly one row, or persists
	// nothing and returns a 400-class error naming the first missing field.
	Create(ctx context.Context, in *domain.SampleInput) (*domain.MetricSample, error)

	// List returns rows matching the filter (an empty filter deliberately
	// matches everything). order nil means the default ascending-timestamp
	// ordering; NoOrder disables ordering entirely.
	List(ctx context.Context, filter domain.SampleFilter, order *domain.SampleOrder) ([]domain.MetricSample, error)

	// DeleteBy removes rows matching the filter and reports how many went.
	// An empty filter is rejected: unscoped deletes are a programming error,
	// never "delete all".
	DeleteBy(ctx context.Context, filter domain.SampleFilter) (int64, error)
}

// NoOrder disables ordering on List.
var NoOrder = &domain.SampleOrder{}

type sampleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSampleRepo(db *gorm.DB, baseLog *logger.Logger) SampleRepo {
	return &sampleRepo{db: db, log: baseLog.With("repo", "SampleRepo")}
}

func (r *sampleRepo) Create(ctx context.Context, in *domain.SampleInput) (*domain.MetricSample, error) {
	if in == nil {
		return nil, apierr.Validationf("metrics payload required")
	}
	if missing := in.MissingField(); missing != "" {
		return nil, apierr.Validationf("metrics missing required field: %s", missing)
	}
	row := in.Sample()
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *sampleRepo) List(ctx context.Context, filter domain.SampleFilter, order *domain.SampleOrder) ([]domain.MetricSample, error) {
	out := []domain.MetricSample{}
	q := r.db.WithContext(ctx).Model(&domain.MetricSample{})
	if cols := filter.Columns(); len(cols) > 0 {
		q = q.Where(cols)
	}
	if order == nil {
		order = &domain.OrderByTimestamp
	}
	if order.Column != "" {
		q = q.Order(order.Clause())
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sampleRepo) DeleteBy(ctx context.Context, filter domain.SampleFilter) (int64, error) {
	if filter.IsZero() {
		return 0, apierr.Validationf("for safety, delete requires a filter")
	}
	res := r.db.WithContext(ctx).Where(filter.Columns()).Delete(&domain.MetricSample{})
	if res.Error != nil {
		return 0, res.Error
	}
	r.log.Debug("samples deleted",
		"room_name", filter.RoomName,
		"session_id", filter.SessionID,
		"rows", res.RowsAffected,
	)
	return res.RowsAffected, nil
}
