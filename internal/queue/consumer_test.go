package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	uid := uint64(12)
	tests := []struct {
		name string
		ev   AuthEvent
		want string
	}{
		{
			name: "denied with route",
			ev: AuthEvent{Type: EventAccessDenied, UserID: &uid, Reason: "role_not_allowed",
				Method: "POST", Route: "/positions", OccurredAt: "2025-01-02T03:04:05Z"},
			want: "[2025-01-02T03:04:05Z] access.denied | user_id=12 | reason=role_not_allowed | route=\"POST /positions\"\n",
		},
		{
			name: "failed login has no user",
			ev:   AuthEvent{Type: EventLoginFailed, Flow: "pin", OccurredAt: "t"},
			want: "[t] login.failed | user_id=- | flow=pin\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLine(tt.ev))
		})
	}
}

func TestHandleMessageAppends(t *testing.T) {
	logger, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "logs", "auth_audit.log")
	a := &AuditConsumer{LogPath: path, Log: logger}

	uid := uint64(3)
	for _, ev := range []AuthEvent{
		{Type: EventLoginSucceeded, Flow: "password", UserID: &uid, OccurredAt: "a"},
		{Type: EventLogout, UserID: &uid, OccurredAt: "b"},
	} {
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, a.handleMessage(body))
	}

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"[a] login.succeeded | user_id=3 | flow=password\n[b] logout | user_id=3\n",
		string(got))
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	a := &AuditConsumer{LogPath: filepath.Join(t.TempDir(), "x.log"), Log: logrus.New()}
	assert.Error(t, a.handleMessage([]byte("{not json")))
	assert.Error(t, a.handleMessage([]byte(`{"user_id":1}`)))
}
