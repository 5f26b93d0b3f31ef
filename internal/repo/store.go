package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lukinkratas/zapis-stavy/internal/model"
	"github.com/lukinkratas/zapis-stavy/internal/pkg/dbutil"
	appErr "github.com/lukinkratas/zapis-stavy/internal/pkg/errors"
)

const defaultOrderBy = "created_at asc, id asc"

var (
	ErrUnknownColumn = errors.New("column not allowed")
	ErrEmptyFields   = errors.New("no fields to write")
	ErrMissingOwner  = errors.New("owner required")
)

// Fields maps column names to values. Keys must appear in the schema allow-list
// for the operation; they are never taken from request input.
type Fields map[string]interface{}

// Schema describes one relation. Every identifier that reaches generated SQL comes
// from these lists.
type Schema struct {
	Table       string
	Columns     []string
	Insertable  []string
	Updatable   []string
	OwnerColumn string
	ForeignKeys []string
	Lookups     []string
}

func (s Schema) pick(fields Fields, allowed []string) (map[string]interface{}, error) {
	data := make(map[string]interface{}, len(fields))
	for col, value := range fields {
		if !contains(allowed, col) {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, s.Table, col)
		}
		data[col] = value
	}
	return data, nil
}

func (s Schema) returning() string {
	return " RETURNING " + strings.Join(s.Columns, ", ")
}

func (s Schema) scope(where map[string]interface{}, owner string) error {
	if s.OwnerColumn == "" {
		return nil
	}
	if owner == "" {
		return fmt.Errorf("%w: %s", ErrMissingOwner, s.Table)
	}
	where[s.OwnerColumn] = owner
	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

// Store runs parameterized CRUD against a single relation and scans rows into T
// through its `db` struct tags.
type Store[T any] struct {
	db     *DB
	schema Schema
}

func NewStore[T any](db *DB, schema Schema) *Store[T] {
	return &Store[T]{db: db, schema: schema}
}

func (s *Store[T]) logQuery(ctx context.Context, op, query string) {
	logutil.GetLogger(ctx).Debug("sql query",
		zap.String("table", s.schema.Table),
		zap.String("op", op),
		zap.String("query", query),
	)
}

// Insert writes one row and returns it as stored, server defaults included.
func (s *Store[T]) Insert(ctx context.Context, fields Fields) (*T, error) {
	data, err := s.schema.pick(fields, s.schema.Insertable)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: insert into %s", ErrEmptyFields, s.schema.Table)
	}
	sqlStr, args, err := builder.BuildInsert(s.schema.Table, []map[string]interface{}{data})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr+s.schema.returning(), args)

	var out T
	err = s.db.withTx(ctx, func(tx *sqlx.Tx) error {
		s.logQuery(ctx, "insert", sqlStr)
		if err := tx.GetContext(ctx, &out, sqlStr, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: insert into %s returned no row", appErr.ErrPersistence, s.schema.Table)
			}
			return mapErr("insert into "+s.schema.Table, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies fields to the row with the given id (and owner, for owner-scoped
// relations). A missing row and a row owned by someone else both yield ErrNotFound.
func (s *Store[T]) Update(ctx context.Context, id, owner string, fields Fields) (*T, error) {
	data, err := s.schema.pick(fields, s.schema.Updatable)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return s.SelectByID(ctx, id, owner)
	}
	where := map[string]interface{}{"id": id}
	if err := s.schema.scope(where, owner); err != nil {
		return nil, err
	}
	sqlStr, args, err := builder.BuildUpdate(s.schema.Table, where, data)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr+s.schema.returning(), args)

	var out T
	err = s.db.withTx(ctx, func(tx *sqlx.Tx) error {
		s.logQuery(ctx, "update", sqlStr)
		if err := tx.GetContext(ctx, &out, sqlStr, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s %s", appErr.ErrNotFound, s.schema.Table, id)
			}
			return mapErr("update "+s.schema.Table, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete is idempotent: removing an absent or foreign row succeeds without error.
func (s *Store[T]) Delete(ctx context.Context, id, owner string) error {
	where := map[string]interface{}{"id": id}
	if err := s.schema.scope(where, owner); err != nil {
		return err
	}
	sqlStr, args, err := builder.BuildDelete(s.schema.Table, where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)

	return s.db.withTx(ctx, func(tx *sqlx.Tx) error {
		s.logQuery(ctx, "delete", sqlStr)
		result, err := tx.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			return mapErr("delete from "+s.schema.Table, err)
		}
		if affected, err := result.RowsAffected(); err == nil && affected == 0 {
			logutil.GetLogger(ctx).Debug("delete matched no row",
				zap.String("table", s.schema.Table),
				zap.String("id", id),
			)
		}
		return nil
	})
}

func (s *Store[T]) SelectByID(ctx context.Context, id, owner string) (*T, error) {
	where := map[string]interface{}{"id": id}
	if err := s.schema.scope(where, owner); err != nil {
		return nil, err
	}
	return s.selectOne(ctx, where)
}

// SelectOneBy looks a row up by a unique lookup column such as users.email.
func (s *Store[T]) SelectOneBy(ctx context.Context, column string, value interface{}) (*T, error) {
	if !contains(s.schema.Lookups, column) {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, s.schema.Table, column)
	}
	return s.selectOne(ctx, map[string]interface{}{column: value})
}

func (s *Store[T]) SelectAll(ctx context.Context, page model.Page) ([]T, error) {
	return s.selectMany(ctx, map[string]interface{}{}, page)
}

func (s *Store[T]) SelectByForeignKey(ctx context.Context, fk string, value interface{}, owner string, page model.Page) ([]T, error) {
	if !contains(s.schema.ForeignKeys, fk) {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, s.schema.Table, fk)
	}
	where := map[string]interface{}{fk: value}
	if err := s.schema.scope(where, owner); err != nil {
		return nil, err
	}
	return s.selectMany(ctx, where, page)
}

func (s *Store[T]) selectOne(ctx context.Context, where map[string]interface{}) (*T, error) {
	sqlStr, args, err := builder.BuildSelect(s.schema.Table, where, s.schema.Columns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)

	var out T
	err = s.db.withConn(ctx, func(conn *sqlx.Conn) error {
		s.logQuery(ctx, "select", sqlStr)
		if err := conn.GetContext(ctx, &out, sqlStr, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", appErr.ErrNotFound, s.schema.Table)
			}
			return mapErr("select from "+s.schema.Table, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// selectMany orders by creation time (oldest first, id as tie-breaker) so that
// offset pagination is deterministic.
func (s *Store[T]) selectMany(ctx context.Context, where map[string]interface{}, page model.Page) ([]T, error) {
	page = page.Normalize()
	where["_orderby"] = defaultOrderBy
	where["_limit"] = []uint{uint(page.Offset), uint(page.Limit)}
	sqlStr, args, err := builder.BuildSelect(s.schema.Table, where, s.schema.Columns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)

	items := make([]T, 0)
	err = s.db.withConn(ctx, func(conn *sqlx.Conn) error {
		s.logQuery(ctx, "select", sqlStr)
		if err := conn.SelectContext(ctx, &items, sqlStr, args...); err != nil {
			return mapErr("select from "+s.schema.Table, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
