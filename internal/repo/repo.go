package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

var (
	ErrUserExists = errors.New("user already exists")
	ErrNotFound   = errors.New("user not found")
)

// UsageRecord is one secured calculation request.
type UsageRecord struct {
	UserID   int
	Endpoint string
	Status   int
	Duration time.Duration
	Choked   bool
	At       time.Time
}

// UsageStat aggregates the usage of one endpoint.
type UsageStat struct {
	Endpoint      string  `json:"endpoint"`
	Count         int     `json:"count"`
	Errors        int     `json:"errors"`
	Choked        int     `json:"choked"`
	AvgDurationMs float64 `json:"avgDurationMs"`
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)
	RecordUsage(ctx context.Context, rec UsageRecord) error
	UsageSince(ctx context.Context, userID int, since time.Time) ([]UsageStat, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	login TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL,
	password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS usage_records (
	id BIGSERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	endpoint TEXT NOT NULL,
	status INTEGER NOT NULL,
	duration_ms DOUBLE PRECISION NOT NULL,
	choked BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS usage_records_user_time ON usage_records (user_id, created_at);
`

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserDB(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Migrate creates the tables when they do not exist yet.
func (r *PostgresUserRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return 0, ErrUserExists
	}
	return id, err
}

func (r *PostgresUserRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", ErrNotFound
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresUserRepository) RecordUsage(ctx context.Context, rec UsageRecord) error {
	query := `INSERT INTO usage_records (user_id, endpoint, status, duration_ms, choked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, rec.UserID, rec.Endpoint, rec.Status,
		float64(rec.Duration)/float64(time.Millisecond), rec.Choked, rec.At)
	return err
}

func (r *PostgresUserRepository) UsageSince(ctx context.Context, userID int, since time.Time) ([]UsageStat, error) {
	query := `SELECT endpoint, COUNT(*),
			COUNT(*) FILTER (WHERE status >= 400),
			COUNT(*) FILTER (WHERE choked),
			AVG(duration_ms)
		FROM usage_records
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY endpoint
		ORDER BY endpoint`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []UsageStat{}
	for rows.Next() {
		var s UsageStat
		if err := rows.Scan(&s.Endpoint, &s.Count, &s.Errors, &s.Choked, &s.AvgDurationMs); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
