package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// ErrNotFound is returned when no user matches.
var ErrNotFound = errors.New("repo: not found")

// Profile is a user's public data and display preferences.
type Profile struct {
	ID         int       `json:"id"`
	Login      string    `json:"login"`
	Email      string    `json:"email"`
	FlowUnit   string    `json:"flow_unit"`
	HeightUnit string    `json:"height_unit"`
	CreatedAt  time.Time `json:"created_at"`
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	// GetByLogin returns id 0 and no error when the login is unknown.
	GetByLogin(ctx context.Context, login string) (int, string, error)
	GetProfileByID(ctx context.Context, id int) (Profile, error)
	UpdatePreferences(ctx context.Context, id int, flowUnit, heightUnit string) error
}

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserDB(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Open connects to postgres and verifies the connection.
func Open(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", withSSLMode(connStr))
	if err != nil {
		return nil, fmt.Errorf("repo: configuring database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo: database unreachable: %w", err)
	}
	return db, nil
}

// withSSLMode adds sslmode=require when the DSN does not name a mode.
func withSSLMode(connStr string) string {
	if strings.Contains(connStr, "sslmode=") {
		return connStr
	}
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		if strings.Contains(connStr, "?") {
			return connStr + "&sslmode=require"
		}
		return connStr + "?sslmode=require"
	}
	return connStr + " sslmode=require"
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id          SERIAL PRIMARY KEY,
	login       TEXT NOT NULL UNIQUE,
	email       TEXT NOT NULL UNIQUE,
	password    TEXT NOT NULL,
	flow_unit   TEXT NOT NULL DEFAULT 'l/s',
	height_unit TEXT NOT NULL DEFAULT 'm',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Migrate creates the users table if it does not exist.
func (r *PostgresUserRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("repo: migrate: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

func (r *PostgresUserRepository) GetByLogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", nil
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresUserRepository) GetProfileByID(ctx context.Context, id int) (Profile, error) {
	var p Profile
	query := "SELECT id, login, email, flow_unit, height_unit, created_at FROM users WHERE id=$1"
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Login, &p.Email, &p.FlowUnit, &p.HeightUnit, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresUserRepository) UpdatePreferences(ctx context.Context, id int, flowUnit, heightUnit string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET flow_unit=$1, height_unit=$2 WHERE id=$3", flowUnit, heightUnit, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
