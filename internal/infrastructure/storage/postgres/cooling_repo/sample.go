// Package cooling_repo provides the PostgreSQL implementation of the sample inventory.
package cooling_repo

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"coolstore/internal/core/apperror"
	"coolstore/internal/core/tx"
	"coolstore/internal/domain/cooling"
	"coolstore/internal/infrastructure/storage/postgres"
	"coolstore/pkg/logger"
)

const (
	sampleKindTable = "samplekind"
	sampleTable     = "sample"
	trayTable       = "tray"
	placeTable      = "place"
)

var sampleColumns = postgres.ExtractDBColumns[cooling.Sample]()

// DB is the database handle the repository runs on. *postgres.TxManager implements it.
type DB interface {
	tx.Manager
	GetQuerier(ctx context.Context) postgres.Querier
}

// AuditLogger records inventory mutations inside the running transaction.
type AuditLogger interface {
	LogChange(ctx context.Context, entityType, entityID string, action postgres.AuditAction, changes map[string]any) error
}

// Compile-time check that SampleRepo implements cooling.Repository.
var _ cooling.Repository = (*SampleRepo)(nil)

// SampleRepo implements cooling.Repository.
type SampleRepo struct {
	db    DB
	audit AuditLogger
	now   func() time.Time
	log   *logger.Logger
}

// Option configures SampleRepo.
type Option func(*SampleRepo)

// WithClock overrides the clock used for expiration dates.
func WithClock(now func() time.Time) Option {
	return func(r *SampleRepo) { r.now = now }
}

// WithAudit enables audit entries for created samples and cleared trays.
func WithAudit(a AuditLogger) Option {
	return func(r *SampleRepo) { r.audit = a }
}

// WithLogger sets the logger. Without it the logger from ctx is used.
func WithLogger(l *logger.Logger) Option {
	return func(r *SampleRepo) {
		if l != nil {
			r.log = l.WithComponent("sample_repo")
		}
	}
}

// NewSampleRepo creates a sample repository on an already open database.
func NewSampleRepo(db DB, opts ...Option) (*SampleRepo, error) {
	if db == nil {
		return nil, errConnectionNotSet()
	}

	r := &SampleRepo{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func errConnectionNotSet() *apperror.AppError {
	return apperror.NewConfiguration("connection not set")
}

// querier returns the querier for ctx; fails for a repository built without NewSampleRepo.
func (r *SampleRepo) querier(ctx context.Context) (postgres.Querier, error) {
	if r == nil || r.db == nil {
		return nil, errConnectionNotSet()
	}
	return r.db.GetQuerier(ctx), nil
}

func (r *SampleRepo) loggerFor(ctx context.Context) *logger.Logger {
	if r.log != nil {
		return r.log.WithContext(ctx)
	}
	return logger.FromContext(ctx).WithComponent("sample_repo")
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *SampleRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ListSampleKinds returns all sample kind labels sorted ascending.
// The sort happens here so the result does not depend on the database collation.
func (r *SampleRepo) ListSampleKinds(ctx context.Context) ([]string, error) {
	querier, err := r.querier(ctx)
	if err != nil {
		return nil, err
	}
	r.loggerFor(ctx).Info("list sample kinds")

	sql, args, err := r.Builder().
		Select("text").
		From(sampleKindTable).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	labels := make([]string, 0)
	if err := pgxscan.Select(ctx, querier, &labels, sql, args...); err != nil {
		return nil, apperror.NewConnectivity("list sample kinds", err)
	}

	slices.Sort(labels)
	r.loggerFor(ctx).Debugw("sample kinds loaded", "count", len(labels))
	return labels, nil
}

// FindSampleByID retrieves a sample by id.
func (r *SampleRepo) FindSampleByID(ctx context.Context, sampleID int) (*cooling.Sample, error) {
	querier, err := r.querier(ctx)
	if err != nil {
		return nil, err
	}
	r.loggerFor(ctx).Infow("find sample", "sample_id", sampleID)
	if !cooling.ValidID(sampleID) {
		return nil, apperror.NewNotFound("sample", sampleID)
	}

	sql, args, err := r.Builder().
		Select(sampleColumns...).
		From(sampleTable).
		Where(squirrel.Eq{"sampleid": sampleID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	var s cooling.Sample
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sample", sampleID)
		}
		return nil, apperror.NewConnectivity("find sample", err)
	}
	s.ExpirationDate = cooling.DateOf(s.ExpirationDate)

	return &s, nil
}

// CreateSample registers a sample. Kind lookup, duplicate check and insert
// run in one transaction; nothing is written unless all steps succeed.
func (r *SampleRepo) CreateSample(ctx context.Context, sampleID, sampleKindID int) error {
	if _, err := r.querier(ctx); err != nil {
		return err
	}
	r.loggerFor(ctx).Infow("create sample", "sample_id", sampleID, "sample_kind_id", sampleKindID)
	if err := checkIDRange("sampleId", sampleID); err != nil {
		return err
	}
	if err := checkIDRange("sampleKindId", sampleKindID); err != nil {
		return err
	}

	err := r.db.RunInTransaction(ctx, func(ctx context.Context) error {
		days, err := r.validNoOfDays(ctx, sampleKindID)
		if err != nil {
			return err
		}

		sample := cooling.NewSample(sampleID, sampleKindID, r.now(), days)

		exists, err := r.exists(ctx, sampleTable, "sampleid", sampleID)
		if err != nil {
			return apperror.NewConnectivity("check sample id", err)
		}
		if exists {
			return apperror.NewDuplicate("sample", "sampleId", sampleID)
		}

		if err := r.insertSample(ctx, sample); err != nil {
			return err
		}

		if r.audit != nil {
			err := r.audit.LogChange(ctx, "sample", strconv.Itoa(sampleID), postgres.AuditActionCreate, map[string]any{
				"sampleKindId":   sampleKindID,
				"expirationDate": sample.ExpirationDate.Format(time.DateOnly),
			})
			if err != nil {
				return apperror.NewConnectivity("write audit entry", err)
			}
		}

		r.loggerFor(ctx).Infow("sample created",
			"sample_id", sampleID,
			"expiration_date", sample.ExpirationDate.Format(time.DateOnly),
		)
		return nil
	})

	return asAppError("create sample", err)
}

// validNoOfDays returns the validity window of a sample kind.
func (r *SampleRepo) validNoOfDays(ctx context.Context, sampleKindID int) (int, error) {
	sql, args, err := r.Builder().
		Select("validnoofdays").
		From(sampleKindTable).
		Where(squirrel.Eq{"samplekindid": sampleKindID}).
		ToSql()
	if err != nil {
		return 0, apperror.NewInternal(err)
	}

	var days int
	if err := r.db.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&days); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewValidation("unknown sample kind").
				WithDetail("field", "sampleKindId").
				WithDetail("value", sampleKindID)
		}
		return 0, apperror.NewConnectivity("look up sample kind", err)
	}
	return days, nil
}

func (r *SampleRepo) insertSample(ctx context.Context, s *cooling.Sample) error {
	sql, args, err := r.Builder().
		Insert(sampleTable).
		Columns(sampleColumns...).
		Values(postgres.ValuesOf(s, sampleColumns)...).
		ToSql()
	if err != nil {
		return apperror.NewInternal(err)
	}

	if _, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		// A concurrent creator won the race between check and insert
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("sample", "sampleId", s.ID).
				WithDetail("constraint", postgres.ConstraintName(err)).
				WithCause(err)
		}
		return apperror.NewConnectivity("insert sample", err)
	}
	return nil
}

// exists reports whether table has a row with column = value.
func (r *SampleRepo) exists(ctx context.Context, table, column string, value any) (bool, error) {
	sql, args, err := r.Builder().
		Select("1").
		From(table).
		Where(squirrel.Eq{column: value}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, err
	}

	var one int
	if err := r.db.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func checkIDRange(field string, value int) error {
	if cooling.ValidID(value) {
		return nil
	}
	return apperror.NewValidation("id out of range").
		WithDetail("field", field).
		WithDetail("value", value).
		WithDetail("max", cooling.MaxID)
}

// asAppError passes AppErrors through and classifies everything else
// (begin/commit failures) as connectivity errors.
func asAppError(op string, err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewConnectivity(op, err)
}
