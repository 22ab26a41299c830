package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLite is a Store backed by a single-row sqlite table, giving the pair
// durability across process restarts. The pair invariant holds per statement:
// Save is a single upsert and Clear is a single delete.
type SQLite struct {
	db     *sql.DB
	sealer *Sealer
}

// SQLiteOption customises an SQLite store.
type SQLiteOption func(*SQLite)

// WithSealer encrypts tokens at rest. Without a sealer, tokens are stored in
// plaintext, which is only acceptable for tests and throwaway environments.
func WithSealer(s *Sealer) SQLiteOption {
	return func(st *SQLite) { st.sealer = s }
}

// OpenSQLite opens (creating if needed) the credential database at dsn and
// applies any pending schema migrations.
func OpenSQLite(dsn string, opts ...SQLiteOption) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: failed to open database: %w", err)
	}

	// A single writer avoids SQLITE_BUSY on concurrent saves.
	db.SetMaxOpenConns(1)

	st := &SQLite{db: db}
	for _, opt := range opts {
		opt(st)
	}

	if err := st.applyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("tokenstore: failed to migrate: %w", err)
	}

	return st, nil
}

func (st *SQLite) Close() error { return st.db.Close() }

func (st *SQLite) Save(ctx context.Context, pair Pair) error {
	access, err := st.seal([]byte(pair.AccessToken))
	if err != nil {
		return err
	}
	refresh, err := st.seal([]byte(pair.RefreshToken))
	if err != nil {
		return err
	}

	_, err = st.db.ExecContext(ctx, `
		INSERT INTO credentials (id, access_token, refresh_token, expires_in, updated_at)
		VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			access_token  = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_in    = excluded.expires_in,
			updated_at    = excluded.updated_at;
	`, access, refresh, pair.ExpiresIn)
	if err != nil {
		return fmt.Errorf("tokenstore: failed to save credentials: %w", err)
	}

	return nil
}

func (st *SQLite) Load(ctx context.Context) (Pair, error) {
	var (
		access  []byte
		refresh []byte
		pair    Pair
	)

	row := st.db.QueryRowContext(ctx, `
		SELECT access_token, refresh_token, expires_in
		FROM credentials WHERE id = 1;
	`)
	if err := row.Scan(&access, &refresh, &pair.ExpiresIn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Pair{}, ErrNoCredentials
		}
		return Pair{}, fmt.Errorf("tokenstore: failed to load credentials: %w", err)
	}

	accessPlain, err := st.open(access)
	if err != nil {
		return Pair{}, err
	}
	refreshPlain, err := st.open(refresh)
	if err != nil {
		return Pair{}, err
	}

	pair.AccessToken = string(accessPlain)
	pair.RefreshToken = string(refreshPlain)
	return pair, nil
}

func (st *SQLite) Clear(ctx context.Context) error {
	if _, err := st.db.ExecContext(ctx, `DELETE FROM credentials;`); err != nil {
		return fmt.Errorf("tokenstore: failed to clear credentials: %w", err)
	}
	return nil
}

func (st *SQLite) seal(plaintext []byte) ([]byte, error) {
	if st.sealer == nil {
		return plaintext, nil
	}
	return st.sealer.Seal(plaintext)
}

func (st *SQLite) open(sealed []byte) ([]byte, error) {
	if st.sealer == nil {
		return sealed, nil
	}
	return st.sealer.Open(sealed)
}
