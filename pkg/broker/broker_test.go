package broker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"evex/pkg/envelope"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	b := New(rdb, nil)

	env := envelope.NewStorage("sid-1", "session.expired")
	mock.CustomMatch(func(expected, actual []interface{}) error {
		if len(actual) != 3 || actual[1] != Channel {
			return fmt.Errorf("unexpected args %v", actual)
		}
		got, err := envelope.Unmarshal(toBytes(actual[2]))
		if err != nil {
			return err
		}
		if got.SID != "sid-1" || got.Action != envelope.ActionStorage {
			return errors.New("wrong envelope")
		}
		return nil
	}).ExpectPublish(Channel, nil).SetVal(1)

	require.NoError(t, b.Publish(context.Background(), env))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublish_Error(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	b := New(rdb, nil)

	env := envelope.NewStorage("sid-1", "logout")
	raw, _ := env.Marshal()
	mock.ExpectPublish(Channel, raw).SetErr(errors.New("connection refused"))

	assert.Error(t, b.Publish(context.Background(), env))
}

func TestDispatch(t *testing.T) {
	b := New(nil, nil)

	var got []envelope.Envelope
	b.On(envelope.ActionStorage, func(env envelope.Envelope) {
		got = append(got, env)
	})

	raw, _ := envelope.NewStorage("s", "logout").Marshal()
	b.dispatch(raw)
	b.dispatch([]byte("garbage"))

	other, _ := envelope.New("unrelated", "x").Marshal()
	b.dispatch(other)

	require.Len(t, got, 1)
	assert.Equal(t, "s", got[0].SID)
}

func toBytes(v interface{}) []byte {
	switch t := v.(type) {
	case []byte:
		return t
	case string:
		return []byte(t)
	}
	return nil
}
