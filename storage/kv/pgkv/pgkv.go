// Package pgkv is a kv.Medium backed by the PostgreSQL kv_entries table.
package pgkv

import (
	"context"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/365cent/grade-tracker/storage/kv"
)

const table = "kv_entries"

type Medium struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

var _ kv.Medium = (*Medium)(nil)

// New returns a Medium using db. The kv_entries table must exist (see database.Migrate).
func New(db *sqlx.DB) *Medium {
	return &Medium{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

type entry struct {
	Key   string `db:"key"`
	Value []byte `db:"value"`
}

func (m *Medium) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	res := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return res, nil
	}

	query, args, err := m.sb.
		Select("key", "value").
		From(table).
		Where(squirrel.Eq{"key": keys}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building select query")
	}

	var entries []entry
	if err = m.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting kv entries")
	}
	for _, e := range entries {
		res[e.Key] = e.Value
	}
	return res, nil
}

// Put upserts every entry in one transaction.
func (m *Medium) Put(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ins := m.sb.Insert(table).Columns("key", "value", "updated_at")
	for _, k := range keys {
		ins = ins.Values(k, string(entries[k]), squirrel.Expr("now()"))
	}
	query, args, err := ins.
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building upsert query")
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "upserting kv entries")
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

func (m *Medium) Close() error {
	return m.db.Close()
}
