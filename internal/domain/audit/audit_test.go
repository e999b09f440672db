package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execRecorder struct {
	sql  string
	args []any
}

func (e *execRecorder) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	e.sql = sql
	e.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (e *execRecorder) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("not used")
}

func (e *execRecorder) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("not used")
}

func TestRecordMarshalsSnapshots(t *testing.T) {
	db := &execRecorder{}
	err := New(db).Record(context.Background(), Entry{
		Action:     ActionSettingsUpdate,
		EntityType: "payroll_settings",
		RequestID:  "req-1",
		Before:     map[string]bool{"pfEnabled": true},
		After:      map[string]bool{"pfEnabled": false},
	})
	require.NoError(t, err)
	require.Len(t, db.args, 8)

	assert.Nil(t, db.args[0], "empty actor is stored as NULL")
	assert.Equal(t, ActionSettingsUpdate, db.args[1])
	assert.JSONEq(t, `{"pfEnabled":true}`, string(db.args[4].([]byte)))
	assert.JSONEq(t, `{"pfEnabled":false}`, string(db.args[5].([]byte)))
}

func TestRecordLeavesMissingSnapshotsNull(t *testing.T) {
	db := &execRecorder{}
	require.NoError(t, New(db).Record(context.Background(), Entry{ActorID: "u1", Action: ActionPayslipDelete}))
	assert.Equal(t, "u1", db.args[0])
	assert.Nil(t, db.args[4])
	assert.Nil(t, db.args[5])
}

func TestRecordRejectsUnmarshalableSnapshot(t *testing.T) {
	err := New(&execRecorder{}).Record(context.Background(), Entry{After: make(chan int)})
	var unsupported *json.UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)
}

func TestBuildBaseQueryNumbersPlaceholders(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", Filter{Action: ActionPayrollRun, ActorUser: "u1"})
	assert.Equal(t, "SELECT COUNT(1) FROM audit_events WHERE true AND action = $1 AND actor_user_id::text = $2", query)
	assert.Equal(t, []any{ActionPayrollRun, "u1"}, args)

	from := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	query, args = buildBaseQuery("SELECT 1", Filter{EntityID: "2025-01", From: from, To: to})
	assert.Equal(t, "SELECT 1 FROM audit_events WHERE true AND entity_id = $1 AND created_at >= $2 AND created_at < $3", query)
	assert.Equal(t, []any{"2025-01", from, to}, args)

	query, args = buildBaseQuery("SELECT 1", Filter{})
	assert.Equal(t, "SELECT 1 FROM audit_events WHERE true", query)
	assert.Empty(t, args)
}
