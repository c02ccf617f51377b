package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/time-tracker/internal/apperror"
	"github.com/sakif/time-tracker/internal/model"
	"github.com/sakif/time-tracker/internal/repository"
)

// Compile-time check that *DB implements repository.APIKeyRepository.
var _ repository.APIKeyRepository = (*DB)(nil)

// CreateAPIKey inserts a new key record. Only the hash is stored; the
// plaintext never reaches this layer.
func (db *DB) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	key.ID = xid.New().String()
	key.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO api_keys (id, user_id, name, key_hash, last_used, created_at)
		 VALUES (?, ?, ?, ?, NULL, ?)`,
		key.ID,
		key.UserID,
		key.Name,
		key.KeyHash,
		key.CreatedAt,
	)
	if err != nil {
		if conflict := translateUnique(err, "API key already exists"); conflict != err {
			return conflict
		}
		return fmt.Errorf("sqlite: inserting api key: %w", err)
	}

	return nil
}

// GetAPIKeyByHash looks up a key by the hash of its plaintext — the
// bearer-auth path. Unknown hashes are NotFound; the middleware turns
// that into 401 without revealing whether the key ever existed.
func (db *DB) GetAPIKeyByHash(ctx context.Context, keyHash string) (*model.APIKey, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, name, key_hash, last_used, created_at
		 FROM api_keys WHERE key_hash = ?`,
		keyHash,
	)

	key, err := scanAPIKey(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("api key", "by hash")
		}
		return nil, fmt.Errorf("sqlite: getting api key by hash: %w", err)
	}

	return key, nil
}

// ListAPIKeysByUser returns a user's keys, newest first.
func (db *DB) ListAPIKeysByUser(ctx context.Context, userID string) ([]model.APIKey, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, name, key_hash, last_used, created_at
		 FROM api_keys
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing api keys: %w", err)
	}
	defer rows.Close()

	keys := make([]model.APIKey, 0, 8)
	for rows.Next() {
		key, err := scanAPIKey(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning api key row: %w", err)
		}
		keys = append(keys, *key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating api keys: %w", err)
	}

	return keys, nil
}

// ListAllAPIKeys returns every key joined with its owner's username, for
// the admin panel.
func (db *DB) ListAllAPIKeys(ctx context.Context) ([]model.APIKeyWithOwner, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT k.id, k.user_id, k.name, k.key_hash, k.last_used, k.created_at, u.username
		 FROM api_keys k
		 INNER JOIN users u ON u.id = k.user_id
		 ORDER BY k.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing all api keys: %w", err)
	}
	defer rows.Close()

	keys := make([]model.APIKeyWithOwner, 0, 8)
	for rows.Next() {
		var (
			k        model.APIKeyWithOwner
			lastUsed sql.NullTime
		)
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &lastUsed, &k.CreatedAt, &k.Username); err != nil {
			return nil, fmt.Errorf("sqlite: scanning api key row: %w", err)
		}
		if lastUsed.Valid {
			k.LastUsed = &lastUsed.Time
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating all api keys: %w", err)
	}

	return keys, nil
}

// TouchAPIKeyLastUsed records a successful bearer authentication.
func (db *DB) TouchAPIKeyLastUsed(ctx context.Context, id string, when time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE api_keys SET last_used = ? WHERE id = ?`,
		when, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: touching api key %s: %w", id, err)
	}
	return nil
}

// DeleteAPIKey removes a key by ID.
func (db *DB) DeleteAPIKey(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM api_keys WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting api key %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("api key", id)
	}

	return nil
}

func scanAPIKey(scan func(dest ...any) error) (*model.APIKey, error) {
	var (
		k        model.APIKey
		lastUsed sql.NullTime
	)
	err := scan(
		&k.ID,
		&k.UserID,
		&k.Name,
		&k.KeyHash,
		&lastUsed,
		&k.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastUsed.Valid {
		k.LastUsed = &lastUsed.Time
	}
	return &k, nil
}
