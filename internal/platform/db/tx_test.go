package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	execs      []string
	execErr    error
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	if !f.committed {
		f.rolledBack = true
	}
	return nil
}

type fakeBeginner struct {
	tx       *fakeTx
	beginErr error
	opts     pgx.TxOptions
}

func (f *fakeBeginner) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	f.opts = opts
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.tx, nil
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	beginner := &fakeBeginner{tx: &fakeTx{}}

	err := WithTx(context.Background(), beginner, func(tx pgx.Tx) error { return nil })

	require.NoError(t, err)
	assert.True(t, beginner.tx.committed)
	assert.False(t, beginner.tx.rolledBack)
	assert.Equal(t, pgx.ReadCommitted, beginner.opts.IsoLevel)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	beginner := &fakeBeginner{tx: &fakeTx{}}
	boom := errors.New("boom")

	err := WithTx(context.Background(), beginner, func(tx pgx.Tx) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.False(t, beginner.tx.committed)
	assert.True(t, beginner.tx.rolledBack)
}

func TestWithTxBeginFailure(t *testing.T) {
	beginner := &fakeBeginner{beginErr: errors.New("pool closed")}

	err := WithTx(context.Background(), beginner, func(tx pgx.Tx) error {
		t.Fatal("fn must not run")
		return nil
	})

	assert.ErrorContains(t, err, "begin tx")
}

func TestMigrateAppliesSchema(t *testing.T) {
	beginner := &fakeBeginner{tx: &fakeTx{}}

	require.NoError(t, Migrate(context.Background(), beginner))

	require.Len(t, beginner.tx.execs, len(schema))
	assert.Contains(t, beginner.tx.execs[0], "CREATE TABLE IF NOT EXISTS produtos")
	assert.True(t, beginner.tx.committed)
}

func TestMigrateReportsFailingStep(t *testing.T) {
	beginner := &fakeBeginner{tx: &fakeTx{execErr: errors.New("permission denied")}}

	err := Migrate(context.Background(), beginner)

	assert.ErrorContains(t, err, "migrate step 1")
	assert.True(t, beginner.tx.rolledBack)
}
