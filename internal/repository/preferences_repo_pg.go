package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrInvalidTheme is returned when storing a theme other than light or dark.
var ErrInvalidTheme = errors.New("invalid theme")

type PreferencesRepository interface {
	Theme(ctx context.Context, email string) (domain.Theme, error)
	SetTheme(ctx context.Context, email string, theme domain.Theme) error
}

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGPreferencesRepository struct {
	db DB
}

func NewPreferencesRepository(db DB) *PGPreferencesRepository {
	return &PGPreferencesRepository{db: db}
}

const createPreferencesTable = `CREATE TABLE IF NOT EXISTS user_preferences (
	email      TEXT PRIMARY KEY,
	theme      TEXT NOT NULL DEFAULT 'light',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the preferences table when missing.
func (r *PGPreferencesRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createPreferencesTable); err != nil {
		return fmt.Errorf("create user_preferences: %w", err)
	}
	return nil
}

// Theme returns the stored theme, or light when the user never chose one.
func (r *PGPreferencesRepository) Theme(ctx context.Context, email string) (domain.Theme, error) {
	var theme string
	err := r.db.QueryRow(ctx, `SELECT theme FROM user_preferences WHERE email=$1`, normalizeEmail(email)).Scan(&theme)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ThemeLight, nil
		}
		return "", fmt.Errorf("select theme: %w", err)
	}
	if t := domain.Theme(theme); t.Valid() {
		return t, nil
	}
	return domain.ThemeLight, nil
}

func (r *PGPreferencesRepository) SetTheme(ctx context.Context, email string, theme domain.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	_, err := r.db.Exec(ctx, `INSERT INTO user_preferences (email, theme, updated_at) VALUES ($1, $2, now())
ON CONFLICT (email) DO UPDATE SET theme = EXCLUDED.theme, updated_at = now()`, normalizeEmail(email), string(theme))
	if err != nil {
		return fmt.Errorf("upsert theme: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ PreferencesRepository = (*PGPreferencesRepository)(nil)
