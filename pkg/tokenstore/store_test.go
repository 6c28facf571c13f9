package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"evex/pkg/database"
	"evex/pkg/logger"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exercise runs the behaviour every backend shares.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.Empty())

	require.NoError(t, s.Save(ctx, Tokens{Access: "jwt1", Refresh: "jwt2"}))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Tokens{Access: "jwt1", Refresh: "jwt2"}, got)

	require.NoError(t, s.SetAccess(ctx, "jwt3"))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Tokens{Access: "jwt3", Refresh: "jwt2"}, got)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx), "clear twice")
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestMemoryFactory_Isolated(t *testing.T) {
	f := MemoryFactory()
	a, b := f("a"), f("b")
	require.NoError(t, a.Save(context.Background(), Tokens{Access: "x"}))

	got, _ := b.Load(context.Background())
	assert.True(t, got.Empty())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exercise(t, NewFile(path))
}

func TestFile_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	f := NewFile(path)
	require.NoError(t, f.Save(context.Background(), Tokens{Access: "a", Refresh: "r"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFile(path).Load(context.Background())
	assert.Error(t, err)
}

func TestRedis_Save(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	ttl := 30 * time.Minute
	key := Key("sid-1")
	mock.ExpectHSet(key, AccessKey, "jwt1", RefreshKey, "jwt2").SetVal(2)
	mock.ExpectExpire(key, ttl).SetVal(true)

	s := NewRedis(rdb, "sid-1", ttl)
	require.NoError(t, s.Save(context.Background(), Tokens{Access: "jwt1", Refresh: "jwt2"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_LoadAndSetAccess(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	key := Key("sid-2")
	mock.ExpectHGetAll(key).SetVal(map[string]string{AccessKey: "a", RefreshKey: "r"})
	mock.ExpectHSet(key, AccessKey, "a2").SetVal(0)

	s := NewRedis(rdb, "sid-2", 0)
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Tokens{Access: "a", Refresh: "r"}, got)

	require.NoError(t, s.SetAccess(context.Background(), "a2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_ClearAndErrors(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	key := Key("sid-3")
	mock.ExpectDel(key).SetVal(1)
	mock.ExpectHGetAll(key).SetErr(errors.New("connection refused"))

	s := NewRedis(rdb, "sid-3", time.Minute)
	require.NoError(t, s.Clear(context.Background()))

	_, err := s.Load(context.Background())
	assert.ErrorContains(t, err, "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := database.Connect(dsn, logger.Discard())
	require.NoError(t, err)
	defer db.Close()

	sid := "test-" + time.Now().Format("150405.000000")
	exerciseMissingRow(t, db, sid)
	exercise(t, NewPostgres(db, sid))
}

func exerciseMissingRow(t *testing.T, db *sql.DB, sid string) {
	err := NewPostgres(db, sid).SetAccess(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotFound)
}
