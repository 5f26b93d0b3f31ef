package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/lukinkratas/zapis-stavy/internal/pkg/dbutil"
	appErr "github.com/lukinkratas/zapis-stavy/internal/pkg/errors"
)

// DB hands out pooled connections with a bounded wait and runs mutations in
// transactions. Every connection is returned to the pool before the call returns.
type DB struct {
	x              *sqlx.DB
	acquireTimeout time.Duration
}

func NewDB(db *sql.DB, acquireTimeout time.Duration) *DB {
	return &DB{x: sqlx.NewDb(db, "postgres"), acquireTimeout: acquireTimeout}
}

func (d *DB) Ping(ctx context.Context) error {
	conn, err := d.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.PingContext(ctx)
}

func (d *DB) Stats() sql.DBStats {
	return d.x.Stats()
}

func (d *DB) conn(ctx context.Context) (*sqlx.Conn, error) {
	acquireCtx := ctx
	if d.acquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, d.acquireTimeout)
		defer cancel()
	}
	conn, err := d.x.Connx(acquireCtx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if dbutil.IsUnavailable(err) {
			logutil.GetLogger(ctx).Warn("db connection unavailable",
				zap.Duration("acquire_timeout", d.acquireTimeout),
				zap.Int("in_use", d.x.Stats().InUse),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: acquire connection: %w", appErr.ErrUnavailable, err)
		}
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}

func (d *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	conn, err := d.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return mapErr("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				logutil.GetLogger(ctx).Error("rollback failed", zap.Error(rbErr))
			}
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapErr("commit", err)
	}
	committed = true
	return nil
}

func (d *DB) withConn(ctx context.Context, fn func(conn *sqlx.Conn) error) error {
	conn, err := d.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}

func mapErr(op string, err error) error {
	switch {
	case dbutil.IsConflict(err):
		return fmt.Errorf("%w: %s: %w", appErr.ErrConflict, op, err)
	case dbutil.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %s: %w", appErr.ErrNotFound, op, err)
	case dbutil.IsInvalidText(err):
		return fmt.Errorf("%w: %s: %w", appErr.ErrInvalid, op, err)
	case dbutil.IsUnavailable(err):
		return fmt.Errorf("%w: %s: %w", appErr.ErrUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
