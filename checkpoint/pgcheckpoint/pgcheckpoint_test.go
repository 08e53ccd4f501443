package pgcheckpoint

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapeless/lspgo/checkpoint"
)

// fakeQuerier is a small hand-rolled stand-in for Querier: it records the
// last Exec call and serves a single canned row from QueryRow, avoiding a
// second mocking layer on top of the already-narrow Querier interface.
type fakeQuerier struct {
	lastExecSQL  string
	lastExecArgs []any
	row          []byte
	rowErr       error
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastExecSQL = sql
	f.lastExecArgs = args
	return pgconn.CommandTag{}, nil
}

func (f *fakeQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return fakeRow{data: f.row, err: f.rowErr}
}

type fakeRow struct {
	data []byte
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	ptr, ok := dest[0].(*[]byte)
	if !ok {
		return errors.New("fakeRow: unsupported scan target")
	}
	*ptr = r.data
	return nil
}

func TestNewAppliesDefaultsAndTableNameSanitization(t *testing.T) {
	runID := uuid.New()
	store := New(&fakeQuerier{}, runID)
	assert.Equal(t, defaultTableName, store.tableName)
	assert.Equal(t, runID, store.runID)

	store2 := New(&fakeQuerier{}, runID, WithTableName("custom"))
	assert.Equal(t, `"custom"`, store2.tableName)
}

func TestSaveUpsertsPayload(t *testing.T) {
	q := &fakeQuerier{}
	store := New(q, uuid.New())

	cp := checkpoint.New(checkpoint.ContextState{Frontier: 42}, json.RawMessage(`{"x":1}`), nil)
	require.NoError(t, store.Save(context.Background(), cp))

	assert.Contains(t, q.lastExecSQL, "INSERT INTO")
	assert.Contains(t, q.lastExecSQL, "ON CONFLICT")
	require.Len(t, q.lastExecArgs, 2)
}

func TestLoadRoundTrips(t *testing.T) {
	cp := checkpoint.New(checkpoint.ContextState{Frontier: 7}, json.RawMessage(`{"y":2}`), map[int]json.RawMessage{
		0: json.RawMessage(`{"v":1}`),
	})
	payload, err := json.Marshal(cp)
	require.NoError(t, err)

	q := &fakeQuerier{row: payload}
	store := New(q, uuid.New())

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cp.Context.Frontier, got.Context.Frontier)
	assert.Equal(t, cp.SchemaVersion, got.SchemaVersion)
}

func TestLoadMissingRowIsRecoverable(t *testing.T) {
	q := &fakeQuerier{rowErr: pgx.ErrNoRows}
	store := New(q, uuid.New())

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
