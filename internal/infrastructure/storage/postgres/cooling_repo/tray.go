package cooling_repo

import (
	"context"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"coolstore/internal/core/apperror"
	"coolstore/internal/domain/cooling"
	"coolstore/internal/infrastructure/storage/postgres"
)

// ClearTray removes every Place row of the tray and then each sample that
// was placed there. The cascade runs in one transaction: a failure rolls it
// back completely and is returned to the caller. Samples already gone from
// the sample table are reported in MissingSamples and do not fail the call.
func (r *SampleRepo) ClearTray(ctx context.Context, trayID int) (cooling.ClearTrayResult, error) {
	result := cooling.ClearTrayResult{TrayID: trayID}
	if _, err := r.querier(ctx); err != nil {
		return result, err
	}
	log := r.loggerFor(ctx).With("tray_id", trayID)
	log.Info("clear tray")
	if !cooling.ValidID(trayID) {
		return result, apperror.NewNotFound("tray", trayID)
	}

	err := r.db.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := r.exists(ctx, trayTable, "trayid", trayID)
		if err != nil {
			return apperror.NewConnectivity("check tray", err)
		}
		if !exists {
			return apperror.NewNotFound("tray", trayID)
		}

		sampleIDs, err := r.placedSampleIDs(ctx, trayID)
		if err != nil {
			return err
		}

		removed, err := r.deletePlaces(ctx, trayID)
		if err != nil {
			return err
		}

		result = cooling.ClearTrayResult{
			TrayID:         trayID,
			PlacesRemoved:  removed,
			DeletedSamples: make([]int, 0, len(sampleIDs)),
			MissingSamples: make([]int, 0),
		}

		for _, sampleID := range sampleIDs {
			deleted, err := r.deleteSample(ctx, trayID, sampleID)
			if err != nil {
				return err
			}
			if !deleted {
				log.Warnw("sample not found in sample table", "sample_id", sampleID)
				result.MissingSamples = append(result.MissingSamples, sampleID)
				continue
			}
			log.Infow("sample deleted", "sample_id", sampleID)
			result.DeletedSamples = append(result.DeletedSamples, sampleID)
		}

		if r.audit != nil {
			err := r.audit.LogChange(ctx, "tray", strconv.Itoa(trayID), postgres.AuditActionClear, map[string]any{
				"placesRemoved":  result.PlacesRemoved,
				"deletedSamples": result.DeletedSamples,
				"missingSamples": result.MissingSamples,
			})
			if err != nil {
				return apperror.NewConnectivity("write audit entry", err)
			}
		}
		return nil
	})
	if err != nil {
		return cooling.ClearTrayResult{TrayID: trayID}, asAppError("clear tray", err)
	}

	log.Infow("tray cleared",
		"places_removed", result.PlacesRemoved,
		"samples_deleted", len(result.DeletedSamples),
		"samples_missing", len(result.MissingSamples),
	)
	return result, nil
}

// placedSampleIDs returns the distinct samples placed in a tray.
func (r *SampleRepo) placedSampleIDs(ctx context.Context, trayID int) ([]int, error) {
	sql, args, err := r.Builder().
		Select("sampleid").
		Distinct().
		From(placeTable).
		Where(squirrel.Eq{"trayid": trayID}).
		OrderBy("sampleid").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	ids := make([]int, 0)
	if err := pgxscan.Select(ctx, r.db.GetQuerier(ctx), &ids, sql, args...); err != nil {
		return nil, apperror.NewConnectivity("collect placed samples", err)
	}
	return ids, nil
}

func (r *SampleRepo) deletePlaces(ctx context.Context, trayID int) (int64, error) {
	sql, args, err := r.Builder().
		Delete(placeTable).
		Where(squirrel.Eq{"trayid": trayID}).
		ToSql()
	if err != nil {
		return 0, apperror.NewInternal(err)
	}

	tag, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, apperror.NewConnectivity("delete places", err)
	}
	return tag.RowsAffected(), nil
}

// deleteSample reports false when no sample row existed.
func (r *SampleRepo) deleteSample(ctx context.Context, trayID, sampleID int) (bool, error) {
	sql, args, err := r.Builder().
		Delete(sampleTable).
		Where(squirrel.Eq{"sampleid": sampleID}).
		ToSql()
	if err != nil {
		return false, apperror.NewInternal(err)
	}

	tag, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return false, apperror.NewConflict("sample is still placed in another tray").
				WithDetail("trayId", trayID).
				WithDetail("sampleId", sampleID).
				WithDetail("constraint", postgres.ConstraintName(err)).
				WithCause(err)
		}
		return false, apperror.NewConnectivity("delete sample", err)
	}
	return tag.RowsAffected() > 0, nil
}
