package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/amccague/zscore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "history.db")
	db, err := Open(context.Background(), DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func report(exe string, score int, at time.Time) models.Report {
	return models.Report{
		Executable: exe,
		Score:      score,
		Cases: []models.CaseResult{
			{Name: "Example case", Amount: 1000, Score: 100, MaxScore: 100},
		},
		StartedAt:  at.Add(-time.Second),
		FinishedAt: at,
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "")
	require.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestSaveReportAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t), "secret")
	base := time.Date(2024, 5, 1, 9, 0, 0, 123, time.UTC)

	first, err := repo.SaveReport(ctx, report("./quote", 58, base))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Len(t, first.HMAC, 64)

	_, err = repo.SaveReport(ctx, report("./quote", 100, base.Add(time.Minute)))
	require.NoError(t, err)
	_, err = repo.SaveReport(ctx, report("./other", 0, base.Add(2*time.Minute)))
	require.NoError(t, err)

	runs, err := repo.ListRuns(ctx, "./quote", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 100, runs[0].Score)
	assert.Equal(t, 58, runs[1].Score)
	assert.Equal(t, first.ID, runs[1].ID)
	assert.True(t, runs[1].CreatedAt.Equal(base))
	assert.Contains(t, runs[1].CasesJSON, "Example case")
	for _, run := range runs {
		assert.True(t, run.Verified, run.ID)
	}

	all, err := repo.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "./other", all[0].Executable)

	limited, err := repo.ListRuns(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestListRuns_DetectsTampering(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db, "secret")

	run, err := repo.SaveReport(ctx, report("./quote", 40, time.Now()))
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `UPDATE runs SET score = 100 WHERE id = $1`, run.ID)
	require.NoError(t, err)

	runs, err := repo.ListRuns(ctx, "./quote", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 100, runs[0].Score)
	assert.False(t, runs[0].Verified)

	otherKey := NewRepository(db, "rotated")
	runs, err = otherKey.ListRuns(ctx, "./quote", 10)
	require.NoError(t, err)
	assert.False(t, runs[0].Verified)
}

func TestListRuns_DetectsEditedCasesAndError(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepository(db, "secret")

	cases, err := repo.SaveReport(ctx, report("./quote", 40, time.Now()))
	require.NoError(t, err)
	failed, err := repo.SaveReport(ctx, models.Report{Executable: "./broken", Error: "failed to run ./broken"})
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `UPDATE runs SET cases_json = '[]' WHERE id = $1`, cases.ID)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `UPDATE runs SET error = '' WHERE id = $1`, failed.ID)
	require.NoError(t, err)

	runs, err := repo.ListRuns(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.False(t, run.Verified, run.Executable)
	}
}

func TestSaveReport_FailedRun(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t), "secret")

	r := models.Report{Executable: "./broken", Error: "failed to run ./broken: no such file"}
	run, err := repo.SaveReport(ctx, r)
	require.NoError(t, err)
	assert.False(t, run.CreatedAt.IsZero())

	runs, err := repo.ListRuns(ctx, "./broken", 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 0, runs[0].Score)
	assert.Equal(t, r.Error, runs[0].Error)
	assert.Equal(t, "null", runs[0].CasesJSON)
}
