package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/revplan/internal/logger"
	"github.com/vytor/revplan/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const upsertSuffix = "ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP"

type kvStore struct {
	db *sql.DB
}

// NewKVStore creates a KVStore backed by the kv table
func NewKVStore(db *sql.DB) repository.KVStore {
	return &kvStore{db: db}
}

func (r *kvStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("kv_repo")
	log.Debug("loading key: %s", key)

	query, args, err := sqlBuilder.Select("value").From("kv").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, false, err
	}

	var value string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("key not found: %s", key)
		return nil, false, nil
	}
	if err != nil {
		log.Error("failed to load key %s: %v", key, err)
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (r *kvStore) Save(ctx context.Context, key string, value []byte) error {
	log := logger.FromContext(ctx).WithPrefix("kv_repo")
	log.Debug("saving key: %s (%d bytes)", key, len(value))

	query, args, err := upsert(key, value)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to save key %s: %v", key, err)
		return err
	}
	return nil
}

func (r *kvStore) SaveBatch(ctx context.Context, docs map[string][]byte) error {
	log := logger.FromContext(ctx).WithPrefix("kv_repo")
	log.Debug("saving %d keys", len(docs))

	keys := make([]string, 0, len(docs))
	for key := range docs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		for _, key := range keys {
			query, args, err := upsert(key, docs[key])
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				log.Error("failed to save key %s: %v", key, err)
				return err
			}
		}
		return nil
	})
}

func (r *kvStore) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx).WithPrefix("kv_repo")
	log.Debug("deleting key: %s", key)

	query, args, err := sqlBuilder.Delete("kv").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to delete key %s: %v", key, err)
		return err
	}
	return nil
}

func (r *kvStore) Keys(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("kv_repo")
	log.Debug("listing keys")

	query, args, err := sqlBuilder.Select("key").From("kv").OrderBy("key ASC").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list keys: %v", err)
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			log.Error("failed to scan key row: %v", err)
			return nil, err
		}
		keys = append(keys, key)
	}
	log.Debug("found %d keys", len(keys))
	return keys, rows.Err()
}

func upsert(key string, value []byte) (string, []any, error) {
	return sqlBuilder.Insert("kv").
		Columns("key", "value").
		Values(key, string(value)).
		Suffix(upsertSuffix).
		ToSql()
}
