package credentials

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/eduterm/internal/cryptox"
	"github.com/dmitrijs2005/eduterm/internal/dbx"
)

// Row keys within the credentials table. The record itself is sealed with
// AES-GCM; salt and nonce are stored in the clear next to it.
const (
	keySalt   = "salt"
	keyNonce  = "nonce"
	keyRecord = "record"
)

// SQLiteRepository keeps the sealed auth record in the local sqlite DB.
// The sealing key is derived from the per-install secret and a salt created
// on first save.
type SQLiteRepository struct {
	db     *sql.DB
	secret []byte
}

func NewSQLiteRepository(db *sql.DB, secret []byte) *SQLiteRepository {
	return &SQLiteRepository{db: db, secret: secret}
}

func (r *SQLiteRepository) get(ctx context.Context, q dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) set(ctx context.Context, q dbx.DBTX, key string, value []byte) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set credentials[%s]: %w", key, err)
	}
	return nil
}

// Load reads and unseals the record. Missing or unsealable data yields
// (nil, nil) so a damaged store behaves like a fresh one.
func (r *SQLiteRepository) Load(ctx context.Context) (*Record, error) {
	salt, err := r.get(ctx, r.db, keySalt)
	if err != nil {
		return nil, err
	}
	nonce, err := r.get(ctx, r.db, keyNonce)
	if err != nil {
		return nil, err
	}
	sealed, err := r.get(ctx, r.db, keyRecord)
	if err != nil {
		return nil, err
	}
	if salt == nil || nonce == nil || sealed == nil {
		return nil, nil
	}

	key := cryptox.DeriveSealKey(r.secret, salt)
	var rec Record
	if err := cryptox.Open(sealed, nonce, key, &rec); err != nil {
		return nil, nil
	}
	return &rec, nil
}

// Save seals and writes the record in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, rec *Record) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		salt, err := r.get(ctx, tx, keySalt)
		if err != nil {
			return err
		}
		if salt == nil {
			salt = cryptox.NewSalt()
			if err := r.set(ctx, tx, keySalt, salt); err != nil {
				return err
			}
		}

		key := cryptox.DeriveSealKey(r.secret, salt)
		sealed, nonce, err := cryptox.Seal(rec, key)
		if err != nil {
			return err
		}

		if err := r.set(ctx, tx, keyNonce, nonce); err != nil {
			return err
		}
		return r.set(ctx, tx, keyRecord, sealed)
	})
}

// Clear removes the stored record. The salt is kept so the next save reuses it.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE key IN (?, ?)`, keyNonce, keyRecord)
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
