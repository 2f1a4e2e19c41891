package cooling_repo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"coolstore/internal/core/apperror"
	"coolstore/internal/domain/cooling"
	"coolstore/internal/infrastructure/storage/postgres"
	"coolstore/pkg/logger"
)

func filledTray() *memDB {
	return newMemDB().
		addKind(1, "Blood", 30).
		addKind(2, "Urine", 7).
		addTray(5).
		addTray(6).
		addSample(100, 1, date(2024, 1, 31)).
		addSample(101, 2, date(2024, 1, 8)).
		addSample(200, 1, date(2024, 1, 31)).
		place(5, 1, 100).
		place(5, 2, 101).
		place(5, 3, 100).
		place(6, 1, 200)
}

func TestClearTray_RemovesPlacesAndSamples(t *testing.T) {
	db := filledTray()
	repo := newTestRepo(t, db)
	ctx := context.Background()

	result, err := repo.ClearTray(ctx, 5)

	require.NoError(t, err)
	assert.Equal(t, cooling.ClearTrayResult{
		TrayID:         5,
		PlacesRemoved:  3,
		DeletedSamples: []int{100, 101},
		MissingSamples: []int{},
	}, result)

	assert.Empty(t, db.placesOf(5))
	assert.Len(t, db.placesOf(6), 1, "other trays are untouched")
	assert.NotContains(t, db.samples, 100)
	assert.NotContains(t, db.samples, 101)
	assert.Contains(t, db.samples, 200)

	_, err = repo.FindSampleByID(ctx, 100)
	assert.True(t, apperror.IsNotFound(err))
}

func TestClearTray_StatementOrder(t *testing.T) {
	db := filledTray()
	repo := newTestRepo(t, db)

	_, err := repo.ClearTray(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"SELECT 1 FROM tray WHERE trayid = $1 LIMIT 1",
		"SELECT DISTINCT sampleid FROM place WHERE trayid = $1 ORDER BY sampleid",
		"DELETE FROM place WHERE trayid = $1",
		"DELETE FROM sample WHERE sampleid = $1",
		"DELETE FROM sample WHERE sampleid = $1",
	}, db.statements)
}

func TestClearTray_SingleSampleLeavesKindsAlone(t *testing.T) {
	db := newMemDB().
		addKind(1, "Blood", 30).
		addTray(5).
		addSample(100, 1, date(2024, 1, 31)).
		place(5, 1, 100)
	repo := newTestRepo(t, db)
	ctx := context.Background()

	_, err := repo.ClearTray(ctx, 5)
	require.NoError(t, err)

	assert.Empty(t, db.samples)
	assert.Empty(t, db.places)
	kinds, err := repo.ListSampleKinds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blood"}, kinds)
}

func TestClearTray_UnknownTray(t *testing.T) {
	db := filledTray()
	repo := newTestRepo(t, db)

	result, err := repo.ClearTray(context.Background(), 42)

	require.True(t, apperror.IsNotFound(err))
	assert.Equal(t, cooling.ClearTrayResult{TrayID: 42}, result)
	assert.Len(t, db.places, 4)
	assert.Len(t, db.samples, 3)
	assert.Equal(t, []string{"SELECT 1 FROM tray WHERE trayid = $1 LIMIT 1"}, db.statements)
}

func TestClearTray_EmptyTray(t *testing.T) {
	db := newMemDB().addTray(7)
	repo := newTestRepo(t, db)

	result, err := repo.ClearTray(context.Background(), 7)

	require.NoError(t, err)
	assert.Zero(t, result.PlacesRemoved)
	assert.Empty(t, result.DeletedSamples)
	assert.Contains(t, db.statements, "DELETE FROM place WHERE trayid = $1")
}

func TestClearTray_MissingSampleIsWarnedAndSkipped(t *testing.T) {
	db := newMemDB().
		addKind(1, "Blood", 30).
		addTray(5).
		addSample(100, 1, date(2024, 1, 31)).
		place(5, 1, 100).
		place(5, 2, 300) // no sample row for 300
	core, logs := observer.New(zapcore.InfoLevel)
	repo := newTestRepo(t, db, WithLogger(logger.NewFromZap(zap.New(core))))

	result, err := repo.ClearTray(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, []int{100}, result.DeletedSamples)
	assert.Equal(t, []int{300}, result.MissingSamples)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.EqualValues(t, 300, warnings[0].ContextMap()["sample_id"])
	assert.Equal(t, 1, logs.FilterMessage("tray cleared").Len())
}

func TestClearTray_FailureRollsBackCascade(t *testing.T) {
	db := filledTray()
	db.failOn["DELETE FROM sample "] = errors.New("connection reset")
	repo := newTestRepo(t, db)

	result, err := repo.ClearTray(context.Background(), 5)

	require.True(t, apperror.IsConnectivity(err))
	assert.Empty(t, result.DeletedSamples)
	assert.Len(t, db.placesOf(5), 3, "place rows restored")
	assert.Len(t, db.samples, 3)
	assert.Equal(t, 1, db.rollbacks)
}

func TestClearTray_CollectFailure(t *testing.T) {
	db := filledTray()
	db.failOn["SELECT DISTINCT sampleid FROM place"] = errors.New("canceling statement due to statement timeout")
	repo := newTestRepo(t, db)

	_, err := repo.ClearTray(context.Background(), 5)

	assert.True(t, apperror.IsConnectivity(err))
	assert.NotContains(t, db.statements, "DELETE FROM place WHERE trayid = $1")
}

func TestClearTray_SampleStillPlacedElsewhere(t *testing.T) {
	db := filledTray().place(6, 2, 101)
	repo := newTestRepo(t, db)

	_, err := repo.ClearTray(context.Background(), 5)

	require.True(t, apperror.IsConflict(err))
	assert.True(t, postgres.IsForeignKeyViolation(err))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "place_sampleid_fkey", appErr.Details["constraint"])
	assert.Equal(t, 101, appErr.Details["sampleId"])
	assert.Len(t, db.placesOf(5), 3)
	assert.Contains(t, db.samples, 100)
}

func TestClearTray_WritesAuditEntry(t *testing.T) {
	db := filledTray()
	audit, err := postgres.NewAuditService(db, 0)
	require.NoError(t, err)
	repo := newTestRepo(t, db, WithAudit(audit))

	_, err = repo.ClearTray(context.Background(), 5)
	require.NoError(t, err)

	require.Len(t, db.audit, 1)
	assert.Equal(t, "tray", db.audit[0][1])
	assert.Equal(t, "5", db.audit[0][2])
	assert.Equal(t, "clear", db.audit[0][3])
}

func TestClearTray_SQL(t *testing.T) {
	repo := newTestRepo(t, newMemDB())

	sql, args, err := repo.Builder().
		Delete(placeTable).
		Where("trayid = ?", 5).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM place WHERE trayid = $1", sql)
	assert.Equal(t, []any{5}, args)
}

func TestClearTray_IDOutOfRange(t *testing.T) {
	db := filledTray()
	repo := newTestRepo(t, db)

	_, err := repo.ClearTray(context.Background(), cooling.MaxID+1)

	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, db.statements)
	assert.Zero(t, db.commits+db.rollbacks)
}
