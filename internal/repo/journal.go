package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/invoker/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS invoker_runs (
	id          uuid PRIMARY KEY,
	source      text,
	status      text NOT NULL,
	total       integer NOT NULL,
	started_at  timestamptz,
	finished_at timestamptz,
	error       text,
	created_at  timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS invoker_executions (
	run_id      uuid NOT NULL REFERENCES invoker_runs(id) ON DELETE CASCADE,
	idx         integer NOT NULL,
	object_type text NOT NULL,
	method      text NOT NULL,
	results_id  text,
	status      text NOT NULL,
	stage       text,
	result      jsonb,
	started_at  timestamptz NOT NULL,
	finished_at timestamptz NOT NULL,
	error       text,
	PRIMARY KEY (run_id, idx)
);
`

// Journal — журнал run-ов в Postgres.
//
// Подписывается на оркестратор как наблюдатель: run записывается
// при старте, каждая команда при завершении, итог run при финише.
type Journal struct {
	pool *pgxpool.Pool
}

// NewJournal создаёт Journal поверх пула.
func NewJournal(pool *pgxpool.Pool) *Journal {
	return &Journal{pool: pool}
}

// EnsureSchema создаёт таблицы журнала, если их ещё нет.
func (j *Journal) EnsureSchema(ctx context.Context) error {
	if _, err := j.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure journal schema: %w", err)
	}
	return nil
}

// RunStarted записывает новый run.
func (j *Journal) RunStarted(ctx context.Context, run *domain.Run) error {
	query := `
		INSERT INTO invoker_runs (id, source, status, total, started_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := j.pool.Exec(ctx, query,
		run.ID,
		nullString(run.Source),
		run.Status,
		run.Total,
		run.StartedAt,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// CommandFinished записывает выполненную команду.
func (j *Journal) CommandFinished(ctx context.Context, run *domain.Run, exec *domain.Execution) error {
	result, err := marshalResult(exec.Result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO invoker_executions
			(run_id, idx, object_type, method, results_id, status, stage, result, started_at, finished_at, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = j.pool.Exec(ctx, query,
		run.ID,
		exec.Index,
		exec.ObjectType,
		exec.Method,
		nullString(exec.ResultsID),
		exec.Status,
		nullString(exec.Stage),
		result,
		exec.StartedAt,
		exec.FinishedAt,
		nullString(exec.Error),
	)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// RunFinished обновляет итог run.
func (j *Journal) RunFinished(ctx context.Context, run *domain.Run) error {
	query := `
		UPDATE invoker_runs
		SET status = $2, finished_at = $3, error = $4
		WHERE id = $1
	`
	tag, err := j.pool.Exec(ctx, query,
		run.ID,
		run.Status,
		run.FinishedAt,
		nullString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRun возвращает run вместе с выполненными командами.
func (j *Journal) GetRun(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	query := `
		SELECT id, source, status, total, started_at, finished_at, error, created_at
		FROM invoker_runs
		WHERE id = $1
	`
	run, err := scanRun(j.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	rows, err := j.pool.Query(ctx, `
		SELECT idx, object_type, method, results_id, status, stage, result, started_at, finished_at, error
		FROM invoker_executions
		WHERE run_id = $1
		ORDER BY idx
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		run.Executions = append(run.Executions, *exec)
	}
	return run, rows.Err()
}

// ListRuns возвращает последние run-ы без команд, новые первыми.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.pool.Query(ctx, `
		SELECT id, source, status, total, started_at, finished_at, error, created_at
		FROM invoker_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// --- Helpers ---

func scanRun(row pgx.Row) (*domain.Run, error) {
	var run domain.Run
	var source, runError *string

	err := row.Scan(
		&run.ID,
		&source,
		&run.Status,
		&run.Total,
		&run.StartedAt,
		&run.FinishedAt,
		&runError,
		&run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	run.Source = deref(source)
	run.Error = deref(runError)
	return &run, nil
}

func scanExecution(rows pgx.Rows) (*domain.Execution, error) {
	var exec domain.Execution
	var resultsID, stage, execError *string
	var result []byte

	err := rows.Scan(
		&exec.Index,
		&exec.ObjectType,
		&exec.Method,
		&resultsID,
		&exec.Status,
		&stage,
		&result,
		&exec.StartedAt,
		&exec.FinishedAt,
		&execError,
	)
	if err != nil {
		return nil, fmt.Errorf("scan execution: %w", err)
	}

	if result != nil {
		if err := json.Unmarshal(result, &exec.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	exec.ResultsID = deref(resultsID)
	exec.Stage = deref(stage)
	exec.Error = deref(execError)
	return &exec, nil
}

// marshalResult сериализует результат для jsonb; nil остаётся NULL.
func marshalResult(result map[string]any) ([]byte, error) {
	if result == nil {
		return nil, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return data, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
