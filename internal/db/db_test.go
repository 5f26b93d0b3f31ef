package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func expectSchema(mock sqlmock.Sqlmock, usersErr error) {
	mock.ExpectExec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).WillReturnResult(sqlmock.NewResult(0, 0))
	users := mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`)
	if usersErr != nil {
		users.WillReturnError(usersErr)
	} else {
		users.WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS meters`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS meters_user_id_created_at_idx`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS readings`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS readings_meter_id_created_at_idx`).WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestApplyMigrationsRunsEveryStatementInOrder(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	expectSchema(mock, nil)
	require.NoError(t, ApplyMigrations(context.Background(), conn))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMigrationsToleratesExistingObjects(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	expectSchema(mock, errors.New(`relation "users" already exists`))
	require.NoError(t, ApplyMigrations(context.Background(), conn))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMigrationsStopsOnError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(`CREATE EXTENSION`).WillReturnError(errors.New("permission denied"))
	err = ApplyMigrations(context.Background(), conn)
	require.ErrorContains(t, err, "0001_init.sql")
	require.ErrorContains(t, err, "permission denied")
}
