//go:build integration

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/livepaste/livepaste/pkg/models"
)

// One container for the whole package; tests isolate through distinct
// room IDs.
var sharedPostgresURL string

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("livepaste_test"),
		tcpostgres.WithUsername("livepaste_test"),
		tcpostgres.WithPassword("livepaste_test"),
		testcontainers.WithWaitStrategyAndDeadline(5*time.Minute,
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get connection string: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}
	sharedPostgresURL = url

	code := m.Run()

	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newPostgresStore(t *testing.T) *GORMStore {
	t.Helper()

	st, err := New(&Config{
		Type:     DatabaseTypePostgres,
		Postgres: PostgresConfig{URL: sharedPostgresURL},
	})
	require.NoError(t, err, "store should open and migrate against postgres")

	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newRoomID(t *testing.T) string {
	t.Helper()
	id, err := models.NewRoomID()
	require.NoError(t, err)
	return id
}

func strPtr(s string) *string { return &s }

func TestPostgresMigrationsAndHealth(t *testing.T) {
	st := newPostgresStore(t)
	require.NoError(t, st.Healthcheck(context.Background()))

	// Opening a second store against the migrated database must be a
	// no-op (advisory lock, ErrNoChange path).
	st2, err := New(&Config{
		Type:     DatabaseTypePostgres,
		Postgres: PostgresConfig{URL: sharedPostgresURL},
	})
	require.NoError(t, err)
	require.NoError(t, st2.Close())
}

func TestPostgresFileLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newPostgresStore(t)
	roomID := newRoomID(t)

	file, version, err := st.UpsertFile(ctx, roomID, FileUpsert{
		PathHash:         "a1b2c3d4",
		PathEncrypted:    "enc:main.go",
		ContentEncrypted: strPtr("enc:package main"),
		IsSyncable:       true,
		SizeBytes:        17,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, int64(1), file.Version)

	// Same path hash updates in place via ON CONFLICT.
	file2, version, err := st.UpsertFile(ctx, roomID, FileUpsert{
		PathHash:         "a1b2c3d4",
		PathEncrypted:    "enc:main.go",
		ContentEncrypted: strPtr("enc:package main v2"),
		IsSyncable:       true,
		SizeBytes:        20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	assert.Equal(t, file.ID, file2.ID)
	assert.Equal(t, int64(2), file2.Version)

	// Delete tombstones the path at the bumped version.
	version, err = st.DeleteFile(ctx, roomID, file.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)

	state, err := st.RoomState(ctx, roomID, StateQuery{Since: 2})
	require.NoError(t, err)
	assert.Empty(t, state.Files)
	assert.Equal(t, []string{"a1b2c3d4"}, state.DeletedPathHashes)
}

func TestPostgresOperationConflict(t *testing.T) {
	ctx := context.Background()
	st := newPostgresStore(t)
	roomID := newRoomID(t)

	_, _, err := st.UpsertFile(ctx, roomID, FileUpsert{
		PathHash:         "feedface",
		PathEncrypted:    "enc:notes.txt",
		ContentEncrypted: strPtr("enc:hello"),
		IsSyncable:       true,
	})
	require.NoError(t, err)

	base := int64(1)
	res, err := st.SubmitOperation(ctx, roomID, OperationSubmit{
		FilePathHash: "feedface",
		OpEncrypted:  "enc:op1",
		ClientID:     "alice",
		BaseVersion:  &base,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Seq)
	assert.Equal(t, int64(2), res.CurrentVersion)

	// A second writer on a stale base must get the conflicting ops back.
	_, err = st.SubmitOperation(ctx, roomID, OperationSubmit{
		FilePathHash: "feedface",
		OpEncrypted:  "enc:op2",
		ClientID:     "bob",
		BaseVersion:  &base,
	})
	var conflict *models.OperationConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(2), conflict.CurrentVersion)
	assert.Equal(t, int64(1), conflict.BaseVersion)
	require.Len(t, conflict.ConflictingOps, 1)
	assert.Equal(t, "alice", conflict.ConflictingOps[0].ClientID)
}

func TestPostgresSnapshotPurge(t *testing.T) {
	ctx := context.Background()
	st := newPostgresStore(t)
	roomID := newRoomID(t)

	_, _, err := st.UpsertFile(ctx, roomID, FileUpsert{
		PathHash:         "0badcafe",
		PathEncrypted:    "enc:doc.md",
		ContentEncrypted: strPtr("enc:v0"),
		IsSyncable:       true,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := st.SubmitOperation(ctx, roomID, OperationSubmit{
			FilePathHash: "0badcafe",
			OpEncrypted:  fmt.Sprintf("enc:op%d", i),
			ClientID:     "alice",
		})
		require.NoError(t, err)
	}

	file, roomVersion, purged, err := st.SnapshotFile(ctx, roomID, "0badcafe", "enc:materialized", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
	assert.Equal(t, int64(2), file.SnapshotSeq)
	assert.Greater(t, roomVersion, int64(4))

	ops, opSeq, hasMore, err := st.ListOperations(ctx, roomID, 0, "", 100)
	require.NoError(t, err)
	assert.False(t, hasMore)
	assert.Equal(t, int64(3), opSeq)
	require.Len(t, ops, 1)
	assert.Equal(t, int64(3), ops[0].Seq)
}

func TestPostgresSyncReconcile(t *testing.T) {
	ctx := context.Background()
	st := newPostgresStore(t)
	roomID := newRoomID(t)

	seed := []FileUpsert{
		{PathHash: "aaaa0001", PathEncrypted: "enc:a", ContentEncrypted: strPtr("enc:1"), IsSyncable: true},
		{PathHash: "aaaa0002", PathEncrypted: "enc:b", ContentEncrypted: strPtr("enc:2"), IsSyncable: true},
	}
	_, err := st.UpsertFiles(ctx, roomID, seed)
	require.NoError(t, err)

	result, err := st.SyncFiles(ctx, roomID, []FileUpsert{
		{PathHash: "aaaa0001", PathEncrypted: "enc:a", ContentEncrypted: strPtr("enc:1b"), IsSyncable: true},
		{PathHash: "aaaa0003", PathEncrypted: "enc:c", ContentEncrypted: strPtr("enc:3"), IsSyncable: true},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa0002"}, result.DeletedPathHashes)

	state, err := st.RoomState(ctx, roomID, StateQuery{})
	require.NoError(t, err)
	require.Len(t, state.Files, 2)
}

func TestPostgresChangesetResolution(t *testing.T) {
	ctx := context.Background()
	st := newPostgresStore(t)
	roomID := newRoomID(t)

	cs := &models.Changeset{
		AuthorEncrypted:  "enc:assistant",
		MessageEncrypted: "enc:refactor",
		Changes: []models.Change{
			{FilePathHash: "cccc0001", FilePathEncrypted: "enc:x", NewContentEncrypted: "enc:new-x"},
			{FilePathHash: "cccc0002", FilePathEncrypted: "enc:y", NewContentEncrypted: "enc:new-y"},
		},
	}
	require.NoError(t, st.CreateChangeset(ctx, roomID, cs))

	resolved, err := st.ResolveChangeset(ctx, roomID, cs.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.ChangesetAccepted, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	// Acceptance materialized both target files.
	state, err := st.RoomState(ctx, roomID, StateQuery{})
	require.NoError(t, err)
	assert.Len(t, state.Files, 2)

	// A second resolution is rejected.
	_, err = st.ResolveChangeset(ctx, roomID, cs.ID, false)
	assert.True(t, errors.Is(err, models.ErrChangesetResolved))
}

func TestPostgresRetention(t *testing.T) {
	ctx := context.Background()
	st := newPostgresStore(t)
	roomID := newRoomID(t)

	_, _, err := st.UpsertFile(ctx, roomID, FileUpsert{
		PathHash:         "dddd0001",
		PathEncrypted:    "enc:old",
		ContentEncrypted: strPtr("enc:stale"),
		IsSyncable:       true,
	})
	require.NoError(t, err)

	// A cutoff in the future expires everything written so far.
	deleted, err := st.DeleteExpiredRooms(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))

	_, err = st.GetRoom(ctx, roomID)
	assert.True(t, errors.Is(err, models.ErrRoomNotFound))
}
