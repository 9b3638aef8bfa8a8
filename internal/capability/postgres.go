package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/invoker/internal/repo"
)

// FamilyPostgres — семейство SQL запросов.
const FamilyPostgres = "Postgres"

// Ключи параметров Postgres.
const (
	paramSQL  = "sql"
	paramArgs = "args"
)

// Postgres — семейство Exec и Query.
//
// Пул открывается при первом вызове, а не при старте: файл команд
// без Postgres не требует доступной БД.
//
// Параметры: {"sql": "SELECT id FROM t WHERE name = $1", "args": ["{bucket.Name}"]}
//
// Результат Exec: {"rows_affected": 1, "command": "INSERT 0 1"}
// Результат Query: {"rows": [{"id": 1}], "count": 1}
type Postgres struct {
	dsn string

	mu   sync.Mutex
	pool *pgxpool.Pool
}

// NewPostgres создаёт семейство Postgres.
func NewPostgres(dsn string) *Postgres {
	return &Postgres{dsn: dsn}
}

// Register регистрирует методы семейства.
func (p *Postgres) Register(r *Registry) {
	r.Register(FamilyPostgres, "Exec", p.Exec)
	r.Register(FamilyPostgres, "Query", p.Query)
	r.OnClose(p.Close)
}

func (p *Postgres) acquire(ctx context.Context) (*pgxpool.Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool != nil {
		return p.pool, nil
	}
	pool, err := repo.NewPool(ctx, p.dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	p.pool = pool
	return pool, nil
}

// Exec выполняет команду без выборки строк.
func (p *Postgres) Exec(ctx context.Context, params map[string]any) (map[string]any, error) {
	sql, args, err := sqlParams(params)
	if err != nil {
		return nil, err
	}

	pool, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}

	tag, err := pool.Exec(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres exec: %w", err)
	}

	return map[string]any{
		"rows_affected": tag.RowsAffected(),
		"command":       tag.String(),
	}, nil
}

// Query выполняет выборку; каждая строка — карта колонок.
func (p *Postgres) Query(ctx context.Context, params map[string]any) (map[string]any, error) {
	sql, args, err := sqlParams(params)
	if err != nil {
		return nil, err
	}

	pool, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres query: %w", err)
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("postgres query: %w", err)
	}

	list := make([]any, len(collected))
	for i, row := range collected {
		list[i] = row
	}

	return map[string]any{
		"rows":  list,
		"count": len(list),
	}, nil
}

// Close закрывает пул, если он был открыт.
func (p *Postgres) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	return nil
}

func sqlParams(params map[string]any) (string, []any, error) {
	sql := String(params, paramSQL)
	if sql == "" {
		return "", nil, invalidParams(FamilyPostgres, "sql is required")
	}

	raw := List(params, paramArgs)
	args := make([]any, len(raw))
	for i, a := range raw {
		args[i] = sqlArg(a)
	}
	return sql, args, nil
}

// sqlArg приводит json.Number к числу, которое умеет кодировать pgx.
func sqlArg(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
