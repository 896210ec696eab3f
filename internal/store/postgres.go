package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tiliavir/trivial-event-tracker/internal/config"
	"github.com/Tiliavir/trivial-event-tracker/internal/logging"
	"github.com/Tiliavir/trivial-event-tracker/internal/model"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore reads and writes the events table over a pgx pool.
type PostgresStore struct {
	pool    *pgxpool.Pool
	table   string
	timeout time.Duration
}

// NewPostgres creates a pool for cfg.URL, using cfg.Key as the password.
// The pool connects lazily.
func NewPostgres(ctx context.Context, cfg config.StoreConfig) (*PostgresStore, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing store url: %w", err)
	}
	pc.ConnConfig.Password = cfg.Key
	pc.MaxConns = 4
	if cfg.Timeout > 0 {
		pc.ConnConfig.ConnectTimeout = cfg.Timeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	return &PostgresStore{
		pool:    pool,
		table:   pgx.Identifier{cfg.Table}.Sanitize(),
		timeout: cfg.Timeout,
	}, nil
}

// Migrate creates the events table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if _, err := s.pool.Exec(ctx, createTableSQL(s.table)); err != nil {
		return fmt.Errorf("creating table %s: %w", s.table, err)
	}
	logging.Info().Str("table", s.table).Msg("events table ready")
	return nil
}

// Insert appends one row.
func (s *PostgresStore) Insert(ctx context.Context, ev model.NewEvent) error {
	ev, err := prepare(ev)
	if err != nil {
		return err
	}
	query, args, err := insertQuery(s.table, ev)
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// FetchAll returns every row ordered by id.
func (s *PostgresStore) FetchAll(ctx context.Context) ([]model.Event, error) {
	query, args, err := selectQuery(s.table)
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}
	defer rows.Close()

	var all []model.Event
	for rows.Next() {
		var (
			ev    model.Event
			notes *string
		)
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.Date, &notes, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		ev.Date = ev.Date.UTC()
		if notes != nil {
			ev.Notes = *notes
		}
		all = append(all, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}
	return all, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func insertQuery(table string, ev model.NewEvent) (string, []any, error) {
	row := model.ToRow(ev)
	return psql.Insert(table).
		Columns("event_name", "event_date", "notes").
		Values(row.EventName, ev.Date, row.Notes).
		ToSql()
}

func selectQuery(table string) (string, []any, error) {
	return psql.Select("id", "event_name", "event_date", "notes", "created_at").
		From(table).
		OrderBy("id ASC").
		ToSql()
}

func createTableSQL(table string) string {
	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
	id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	event_name TEXT NOT NULL,
	event_date DATE NOT NULL,
	notes      TEXT
)`
}
