package repository

import (
	"context"
	"database/sql"
	"errors"
)

// MySQLStore keeps blobs in a single key/value table.
type MySQLStore struct{ DB *sql.DB }

func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{DB: db} }

// EnsureSchema creates the blob table when it is missing.
func (s *MySQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS seating_blobs (
		blob_key   VARCHAR(255) NOT NULL PRIMARY KEY,
		body       LONGBLOB     NOT NULL,
		updated_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`)
	return err
}

func (s *MySQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := s.DB.QueryRowContext(ctx,
		"SELECT body FROM seating_blobs WHERE blob_key=? LIMIT 1", key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return body, err
}

func (s *MySQLStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO seating_blobs (blob_key, body) VALUES (?,?) ON DUPLICATE KEY UPDATE body=VALUES(body)",
		key, data)
	return err
}

func (s *MySQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM seating_blobs WHERE blob_key=?", key)
	return err
}

// Rename replaces the destination row, if any, inside one transaction.
func (s *MySQLStore) Rename(ctx context.Context, from, to string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM seating_blobs WHERE blob_key=?", to); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "UPDATE seating_blobs SET blob_key=? WHERE blob_key=?", to, from)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
