package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amccague/zscore/internal/models"
	"github.com/amccague/zscore/internal/utils"
	"github.com/google/uuid"
	_ "github.com/lib/pq"  // driver: postgres
	_ "modernc.org/sqlite" // driver: sqlite
)

// ErrUnsupportedDriver is returned by Open for an unknown driver name.
var ErrUnsupportedDriver = errors.New("unsupported history driver")

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultSQLiteDSN   = "file:zscore-history.db?_pragma=busy_timeout(5000)"
	defaultPostgresDSN = "postgres://localhost:5432/zscore?sslmode=disable"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  executable TEXT NOT NULL,
  score INTEGER NOT NULL,
  cases_json TEXT NOT NULL,
  error TEXT NOT NULL DEFAULT '',
  hmac TEXT NOT NULL,
  created_at BIGINT NOT NULL
)`

// Repository provides storage for scoring runs
type Repository struct {
	db     *sql.DB
	secret string
}

// NewRepository initializes a new repository; secret signs every stored run
func NewRepository(db *sql.DB, secret string) *Repository {
	return &Repository{db: db, secret: secret}
}

// Open connects to the history database and ensures the schema exists
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
	case DriverPostgres:
		if dsn == "" {
			dsn = defaultPostgresDSN
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return db, nil
}

// SaveReport stores a finished report as a signed run
func (r *Repository) SaveReport(ctx context.Context, report models.Report) (*models.Run, error) {
	cases, err := json.Marshal(report.Cases)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cases: %w", err)
	}

	createdAt := report.FinishedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	run := &models.Run{
		ID:         uuid.NewString(),
		Executable: report.Executable,
		Score:      report.Score,
		CasesJSON:  string(cases),
		Error:      report.Error,
		CreatedAt:  createdAt.UTC(),
		Verified:   true,
	}
	run.HMAC = utils.GenerateHMAC(run, r.secret)

	if err := r.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// CreateRun inserts a run in the database
func (r *Repository) CreateRun(ctx context.Context, run *models.Run) error {
	query := `
		INSERT INTO runs (id, executable, score, cases_json, error, hmac, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Executable, run.Score, run.CasesJSON, run.Error, run.HMAC, run.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// ListRuns returns the newest runs first, for one executable or all when empty
func (r *Repository) ListRuns(ctx context.Context, executable string, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, executable, score, cases_json, error, hmac, created_at
		FROM runs
		WHERE ($1 = '' OR executable = $1)
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, executable, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		var run models.Run
		var createdAt int64
		if err := rows.Scan(&run.ID, &run.Executable, &run.Score, &run.CasesJSON, &run.Error, &run.HMAC, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CreatedAt = time.Unix(0, createdAt).UTC()
		run.Verified = utils.VerifyHMAC(&run, r.secret)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
