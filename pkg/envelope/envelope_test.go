package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorage(t *testing.T) {
	e := NewStorage("sid-1", "session.expired")

	assert.Equal(t, ActionStorage, e.Action)
	assert.Equal(t, "sid-1", e.SID)
	assert.NotEmpty(t, e.ID)
	assert.NotZero(t, e.Timestamp)

	change, err := ParseData[StorageChange](e)
	require.NoError(t, err)
	assert.Equal(t, StorageChange{Reason: "session.expired"}, change)
}

func TestReplyAndError(t *testing.T) {
	req := New("session.get", "portal")
	req.SID = "abc"

	reply, err := NewReply(req, map[string]string{"state": "anonymous"})
	require.NoError(t, err)
	assert.Equal(t, "session.get.result", reply.Action)
	assert.Equal(t, req.ID, reply.ReplyTo)
	assert.Equal(t, "abc", reply.SID)

	errEnv := NewError(req, 404, "unknown action")
	assert.Equal(t, "session.get.error", errEnv.Action)
	require.NotNil(t, errEnv.Error)
	assert.Equal(t, 404, errEnv.Error.Code)
}

func TestUnmarshal(t *testing.T) {
	raw, err := NewStorage("s", "logout").Marshal()
	require.NoError(t, err)

	e, err := Unmarshal(raw)
	require.NoError(t, err)
	assert.Equal(t, "s", e.SID)

	_, err = Unmarshal([]byte("{"))
	assert.Error(t, err)
}
