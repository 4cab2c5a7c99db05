package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/livepaste/livepaste/pkg/api/auth"
	"github.com/livepaste/livepaste/pkg/api/middleware"
	"github.com/livepaste/livepaste/pkg/store"
	syncpkg "github.com/livepaste/livepaste/pkg/sync"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	st, err := store.New(&store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: ":memory:"},
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	tokens, err := auth.NewRoomTokenService(auth.Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}

	return NewRouter(Dependencies{
		Store:    st,
		Sessions: syncpkg.NewManager(syncpkg.Config{}),
		Tokens:   tokens,
	})
}

// request performs one JSON request against the router.
func request(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decode parses a JSON response body.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func fileBody(pathHash, pathEnc, content string) map[string]any {
	return map[string]any{
		"path_hash":         pathHash,
		"path_encrypted":    pathEnc,
		"content_encrypted": content,
	}
}

func TestRootRedirect(t *testing.T) {
	router := newTestRouter(t)

	rec := request(t, router, http.MethodGet, "/", nil, nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !regexp.MustCompile(`^/room/[A-Za-z0-9]{8}$`).MatchString(loc) {
		t.Errorf("Location = %q, want /room/{8 alphanumerics}", loc)
	}
}

func TestRoomPagePlaceholder(t *testing.T) {
	router := newTestRouter(t)

	rec := request(t, router, http.MethodGet, "/room/abc12345", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("LivePaste")) {
		t.Error("placeholder page missing")
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := request(t, router, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decode(t, rec)["status"]; got != "healthy" {
		t.Errorf("status = %v, want healthy", got)
	}
}

func TestRoomIDValidation(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{
		"/api/room/short/info",
		"/api/room/toolong123/info",
		"/api/room/bad-id12/info",
		"/room/no",
	} {
		rec := request(t, router, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
	}
}

func TestInfoNeverCreates(t *testing.T) {
	router := newTestRouter(t)

	rec := request(t, router, http.MethodGet, "/api/room/abc12345/info", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode(t, rec)
	if body["id"] != "abc12345" || body["has_password"] != false {
		t.Errorf("info = %v", body)
	}

	// The probe must not have created the room: the kill switch 404s.
	rec = request(t, router, http.MethodDelete, "/api/room/abc12345", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete after info = %d, want 404", rec.Code)
	}
}

func TestFileLifecycle(t *testing.T) {
	router := newTestRouter(t)
	base := "/api/room/filerm01"

	// Create.
	rec := request(t, router, http.MethodPost, base+"/files", fileBody("h1", "enc-p1", "enc-v1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["version"] != float64(1) || body["room_version"] != float64(1) {
		t.Errorf("versions = %v/%v, want 1/1", body["version"], body["room_version"])
	}
	file := body["file"].(map[string]any)
	if file["version"] != float64(1) {
		t.Errorf("file version = %v, want 1", file["version"])
	}
	fileID := file["id"].(string)

	// Update bumps both counters.
	rec = request(t, router, http.MethodPost, base+"/files", fileBody("h1", "enc-p1", "enc-v2"), nil)
	body = decode(t, rec)
	if body["version"] != float64(2) || body["room_version"] != float64(2) {
		t.Errorf("after update: %v", body)
	}
	if body["file"].(map[string]any)["version"] != float64(2) {
		t.Errorf("file version after update = %v, want 2", body["file"].(map[string]any)["version"])
	}

	// Missing path_hash is rejected.
	rec = request(t, router, http.MethodPost, base+"/files", map[string]any{"path_encrypted": "x"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("upsert without path_hash = %d, want 400", rec.Code)
	}

	// Delete tombstones at the new version.
	rec = request(t, router, http.MethodDelete, base+"/files/"+fileID, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", rec.Code, rec.Body.String())
	}
	body = decode(t, rec)
	if body["success"] != true || body["version"] != float64(3) {
		t.Errorf("delete = %v", body)
	}

	// Unknown file ID 404s.
	rec = request(t, router, http.MethodDelete, base+"/files/nope", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete unknown = %d, want 404", rec.Code)
	}

	// Delta read since the update sees the tombstone, not the file.
	rec = request(t, router, http.MethodGet, base+"?since=2", nil, nil)
	state := decode(t, rec)
	if len(state["files"].([]any)) != 0 {
		t.Errorf("files = %v, want empty", state["files"])
	}
	deleted := state["deleted_path_hashes"].([]any)
	if len(deleted) != 1 || deleted[0] != "h1" {
		t.Errorf("deleted_path_hashes = %v, want [h1]", deleted)
	}

	// A fresh path in an old room: the file counter restarts at 1 while
	// the room counter keeps climbing.
	rec = request(t, router, http.MethodPost, base+"/files", fileBody("h2", "enc-p2", "enc-w1"), nil)
	body = decode(t, rec)
	if body["version"] != float64(1) || body["room_version"] != float64(4) {
		t.Errorf("new path versions = %v/%v, want 1/4", body["version"], body["room_version"])
	}
}

func TestBulkSync(t *testing.T) {
	router := newTestRouter(t)
	base := "/api/room/bulkrm01"

	// Seed two files one at a time (room v2).
	request(t, router, http.MethodPost, base+"/files", fileBody("old1", "enc-old1", "x"), nil)
	request(t, router, http.MethodPost, base+"/files", fileBody("old2", "enc-old2", "x"), nil)

	// Bulk sync keeping old1, adding new1: one bump for the upserts,
	// one for the deletion.
	rec := request(t, router, http.MethodPost, base+"/sync", map[string]any{
		"files": []map[string]any{
			fileBody("old1", "enc-old1", "y"),
			fileBody("new1", "enc-new1", "y"),
		},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sync status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["version"] != float64(4) {
		t.Errorf("version = %v, want 4", body["version"])
	}
	deleted := body["deleted_path_hashes"].([]any)
	if len(deleted) != 1 || deleted[0] != "old2" {
		t.Errorf("deleted = %v, want [old2]", deleted)
	}
	if len(body["files"].([]any)) != 2 {
		t.Errorf("files = %v, want 2 entries", body["files"])
	}
}

func TestChunkedSync(t *testing.T) {
	router := newTestRouter(t)
	base := "/api/room/chunkrm1"

	// A file that the session will not mention; reconciliation drops it.
	request(t, router, http.MethodPost, base+"/files", fileBody("stale", "enc-stale", "x"), nil)

	rec := request(t, router, http.MethodPost, base+"/sync/begin", map[string]any{
		"client_id":    "editor-1",
		"total_chunks": 2,
		"total_files":  3,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("begin status = %d: %s", rec.Code, rec.Body.String())
	}
	begin := decode(t, rec)
	token := begin["session_token"].(string)
	if begin["expires_in"] != float64(300) {
		t.Errorf("expires_in = %v, want 300", begin["expires_in"])
	}

	rec = request(t, router, http.MethodPost, base+"/sync/chunk", map[string]any{
		"session_token": token,
		"chunk_index":   0,
		"files":         []map[string]any{fileBody("h1", "enc-p1", "c1"), fileBody("h2", "enc-p2", "c2")},
	}, nil)
	chunk := decode(t, rec)
	if chunk["received_chunks"] != float64(1) || chunk["chunks_remaining"] != float64(1) {
		t.Errorf("chunk 0 = %v", chunk)
	}

	rec = request(t, router, http.MethodPost, base+"/sync/chunk", map[string]any{
		"session_token": token,
		"chunk_index":   1,
		"files":         []map[string]any{fileBody("h3", "enc-p3", "c3")},
	}, nil)
	chunk = decode(t, rec)
	if chunk["chunks_remaining"] != float64(0) {
		t.Errorf("chunk 1 = %v", chunk)
	}

	rec = request(t, router, http.MethodPost, base+"/sync/complete", map[string]any{
		"session_token": token,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d: %s", rec.Code, rec.Body.String())
	}
	state := decode(t, rec)
	deleted := state["deleted_path_hashes"].([]any)
	if len(deleted) != 1 || deleted[0] != "stale" {
		t.Errorf("deleted = %v, want [stale]", deleted)
	}
	if len(state["files"].([]any)) != 3 {
		t.Errorf("files = %v, want 3 entries", state["files"])
	}

	// The token was consumed.
	rec = request(t, router, http.MethodPost, base+"/sync/complete", map[string]any{
		"session_token": token,
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("reused token = %d, want 400", rec.Code)
	}
}

func TestChunkUnknownToken(t *testing.T) {
	router := newTestRouter(t)

	rec := request(t, router, http.MethodPost, "/api/room/chunkrm2/sync/chunk", map[string]any{
		"session_token": "nope",
		"chunk_index":   0,
		"files":         []map[string]any{fileBody("h1", "enc-p1", "c1")},
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	// The rejected chunk wrote nothing: the room was never created, so
	// the kill switch 404s.
	rec = request(t, router, http.MethodDelete, "/api/room/chunkrm2", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete after rejected chunk = %d, want 404", rec.Code)
	}
}

func TestOperationConflict(t *testing.T) {
	router := newTestRouter(t)
	base := "/api/room/opsrm001"

	// Seed the file (room v1, file v1).
	request(t, router, http.MethodPost, base+"/files", fileBody("h1", "enc-p1", "seed"), nil)

	submit := func(client string, baseVersion int64) *httptest.ResponseRecorder {
		return request(t, router, http.MethodPost, base+"/ops", map[string]any{
			"file_path_hash": "h1",
			"op_encrypted":   "enc-op",
			"client_id":      client,
			"base_version":   baseVersion,
		}, nil)
	}

	// Alice appends twice: file moves 1 -> 2 -> 3.
	rec := submit("alice", 1)
	body := decode(t, rec)
	if rec.Code != http.StatusOK || body["seq"] != float64(1) || body["current_version"] != float64(2) {
		t.Fatalf("first op = %d %v", rec.Code, body)
	}
	rec = submit("alice", 2)
	body = decode(t, rec)
	if body["seq"] != float64(2) || body["current_version"] != float64(3) {
		t.Fatalf("second op = %v", body)
	}

	// Bob edited against version 1 and never saw Alice's ops.
	rec = submit("bob", 1)
	if rec.Code != http.StatusConflict {
		t.Fatalf("conflict status = %d: %s", rec.Code, rec.Body.String())
	}
	conflict := decode(t, rec)
	if conflict["current_version"] != float64(3) || conflict["base_version"] != float64(1) {
		t.Errorf("conflict = %v", conflict)
	}
	ops := conflict["conflicting_ops"].([]any)
	if len(ops) != 2 {
		t.Fatalf("conflicting_ops = %v, want 2", ops)
	}
	first := ops[0].(map[string]any)
	if first["seq"] != float64(1) || first["client_id"] != "alice" || first["op_encrypted"] != "enc-op" {
		t.Errorf("conflicting op = %v", first)
	}

	// A submission without base_version makes no claim and lands.
	rec = request(t, router, http.MethodPost, base+"/ops", map[string]any{
		"file_path_hash": "h1",
		"op_encrypted":   "enc-op",
		"client_id":      "bob",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("claimless op = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestOperationValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := request(t, router, http.MethodPost, "/api/room/opsrm002/ops", map[string]any{
		"op_encrypted": "x",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("without file_path_hash = %d, want 400", rec.Code)
	}

	rec = request(t, router, http.MethodPost, "/api/room/opsrm002/ops", map[string]any{
		"file_path_hash": "h1",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("without op_encrypted = %d, want 400", rec.Code)
	}
}

func TestListOperations(t *testing.T) {
	router := newTestRouter(t)
	base := "/api/room/opsrm003"

	for i := 0; i < 3; i++ {
		request(t, router, http.MethodPost, base+"/ops", map[string]any{
			"file_path_hash": "h1",
			"op_encrypted":   fmt.Sprintf("op-%d", i),
			"client_id":      "alice",
		}, nil)
	}

	rec := request(t, router, http.MethodGet, base+"/ops?since=1", nil, nil)
	body := decode(t, rec)
	ops := body["operations"].([]any)
	if len(ops) != 2 || body["op_seq"] != float64(3) || body["has_more"] != false {
		t.Errorf("list = %v", body)
	}
	if ops[0].(map[string]any)["seq"] != float64(2) {
		t.Errorf("first listed op = %v", ops[0])
	}
}

func TestSnapshot(t *testing.T) {
	router := newTestRouter(t)
	base := "/api/room/snaprm02"

	request(t, router, http.MethodPost, base+"/files", fileBody("h1", "enc-p1", "seed"), nil)
	for i := 0; i < 3; i++ {
		request(t, router, http.MethodPost, base+"/ops", map[string]any{
			"file_path_hash": "h1",
			"op_encrypted":   "op",
			"client_id":      "alice",
		}, nil)
	}

	rec := request(t, router, http.MethodPost, base+"/files/h1/snapshot", map[string]any{
		"content_encrypted": "materialized",
		"through_seq":       2,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	file := body["file"].(map[string]any)
	if file["snapshot_seq"] != float64(2) || file["content_encrypted"] != "materialized" {
		t.Errorf("file = %v", file)
	}

	// Ops at or below through_seq are gone.
	rec = request(t, router, http.MethodGet, base+"/ops", nil, nil)
	ops := decode(t, rec)["operations"].([]any)
	if len(ops) != 1 || ops[0].(map[string]any)["seq"] != float64(3) {
		t.Errorf("surviving ops = %v", ops)
	}

	// Snapshot of an unknown file 404s.
	rec = request(t, router, http.MethodPost, base+"/files/ghost/snapshot", map[string]any{
		"content_encrypted": "x",
		"through_seq":       1,
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown file snapshot = %d, want 404", rec.Code)
	}
}

func TestChangesetReview(t *testing.T) {
	router := newTestRouter(t)
	base := "/api/room/csrm0001"

	create := func() map[string]any {
		rec := request(t, router, http.MethodPost, base+"/changesets", map[string]any{
			"author_encrypted":  "enc-author",
			"message_encrypted": "enc-message",
			"changes": []map[string]any{
				{"file_path_hash": "h1", "file_path_encrypted": "enc-p1", "new_content_encrypted": "new1"},
				{"file_path_hash": "h2", "file_path_encrypted": "enc-p2", "new_content_encrypted": "new2"},
			},
		}, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
		}
		return decode(t, rec)
	}

	t.Run("empty changeset rejected", func(t *testing.T) {
		rec := request(t, router, http.MethodPost, base+"/changesets", map[string]any{
			"changes": []map[string]any{},
		}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("accept whole applies every change", func(t *testing.T) {
		cs := create()
		rec := request(t, router, http.MethodPost,
			fmt.Sprintf("%s/changesets/%s/accept", base, cs["id"]), nil, nil)
		body := decode(t, rec)
		if body["status"] != "accepted" || body["resolved_at"] == nil {
			t.Errorf("resolved = %v", body)
		}

		state := decode(t, request(t, router, http.MethodGet, base, nil, nil))
		if len(state["files"].([]any)) != 2 {
			t.Errorf("files after accept = %v", state["files"])
		}
		// Resolved changesets leave the pending list.
		if len(state["changesets"].([]any)) != 0 {
			t.Errorf("pending changesets = %v, want none", state["changesets"])
		}

		// Double resolution is a 400.
		rec = request(t, router, http.MethodPost,
			fmt.Sprintf("%s/changesets/%s/reject", base, cs["id"]), nil, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("double resolve = %d, want 400", rec.Code)
		}
	})

	t.Run("partial on first per-change resolution", func(t *testing.T) {
		cs := create()
		changes := cs["changes"].([]any)
		first := changes[0].(map[string]any)["id"].(string)
		second := changes[1].(map[string]any)["id"].(string)

		rec := request(t, router, http.MethodPost,
			fmt.Sprintf("%s/changes/%s/accept", base, first), nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("accept change = %d: %s", rec.Code, rec.Body.String())
		}
		if decode(t, rec)["status"] != "accepted" {
			t.Error("change not accepted")
		}

		// The parent is now partial; whole-changeset resolution is closed.
		rec = request(t, router, http.MethodPost,
			fmt.Sprintf("%s/changesets/%s/accept", base, cs["id"]), nil, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("accept partial parent = %d, want 400", rec.Code)
		}

		// The second change can still be resolved individually.
		rec = request(t, router, http.MethodPost,
			fmt.Sprintf("%s/changes/%s/reject", base, second), nil, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("reject second change = %d", rec.Code)
		}

		// And each change resolves exactly once.
		rec = request(t, router, http.MethodPost,
			fmt.Sprintf("%s/changes/%s/accept", base, first), nil, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("double change resolve = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown ids", func(t *testing.T) {
		rec := request(t, router, http.MethodPost, base+"/changesets/nope/accept", nil, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("unknown changeset = %d, want 404", rec.Code)
		}
		rec = request(t, router, http.MethodPost, base+"/changes/nope/accept", nil, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("unknown change = %d, want 404", rec.Code)
		}
	})
}

func TestPasswordFlow(t *testing.T) {
	router := newTestRouter(t)
	base := "/api/room/pwroom01"
	digest := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

	// Open room: protected routes pass.
	rec := request(t, router, http.MethodGet, base+"/version", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("open room version = %d", rec.Code)
	}

	// First password needs no current secret.
	rec = request(t, router, http.MethodPost, base+"/password", map[string]any{
		"password": digest,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("set password = %d: %s", rec.Code, rec.Body.String())
	}

	// info reports protection without auth.
	rec = request(t, router, http.MethodGet, base+"/info", nil, nil)
	if decode(t, rec)["has_password"] != true {
		t.Error("info does not report password")
	}

	// Protected route without credentials: clients key off password_required.
	rec = request(t, router, http.MethodGet, base+"/version", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated = %d, want 401", rec.Code)
	}
	if body := decode(t, rec); body["password_required"] != true {
		t.Errorf("401 body = %v", body)
	}

	// Wrong digest is rejected, right digest passes (headers only).
	rec = request(t, router, http.MethodGet, base+"/version", nil,
		map[string]string{middleware.PasswordHeader: "wrong-digest"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong digest = %d, want 401", rec.Code)
	}
	rec = request(t, router, http.MethodGet, base+"/version", nil,
		map[string]string{middleware.PasswordHeader: digest})
	if rec.Code != http.StatusOK {
		t.Errorf("right digest = %d, want 200", rec.Code)
	}

	// verify-password mints a usable token.
	rec = request(t, router, http.MethodPost, base+"/verify-password", map[string]any{
		"password": digest,
	}, nil)
	verified := decode(t, rec)
	if verified["success"] != true || verified["token"] == nil {
		t.Fatalf("verify = %v", verified)
	}
	token := verified["token"].(string)

	rec = request(t, router, http.MethodGet, base+"/version", nil,
		map[string]string{"Authorization": "Bearer " + token})
	if rec.Code != http.StatusOK {
		t.Errorf("bearer token = %d, want 200", rec.Code)
	}

	// The token is scoped to its room.
	request(t, router, http.MethodPost, "/api/room/pwroom02/password", map[string]any{
		"password": digest,
	}, nil)
	rec = request(t, router, http.MethodGet, "/api/room/pwroom02/version", nil,
		map[string]string{"Authorization": "Bearer " + token})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("foreign token = %d, want 401", rec.Code)
	}

	// A wrong digest on verify-password reports failure without a token.
	rec = request(t, router, http.MethodPost, base+"/verify-password", map[string]any{
		"password": "wrong-digest",
	}, nil)
	verified = decode(t, rec)
	if verified["success"] != false || verified["token"] != nil {
		t.Errorf("verify wrong = %v", verified)
	}

	// Changing the password requires the current digest.
	rec = request(t, router, http.MethodPost, base+"/password", map[string]any{
		"password": "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("change without current = %d, want 401", rec.Code)
	}
	rec = request(t, router, http.MethodPost, base+"/password", map[string]any{
		"password":         "",
		"current_password": digest,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove password = %d: %s", rec.Code, rec.Body.String())
	}

	// The room is open again.
	rec = request(t, router, http.MethodGet, base+"/version", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("after removal = %d, want 200", rec.Code)
	}
}

func TestKillSwitch(t *testing.T) {
	router := newTestRouter(t)
	base := "/api/room/killrm01"

	request(t, router, http.MethodPost, base+"/files", fileBody("h1", "enc-p1", "x"), nil)

	rec := request(t, router, http.MethodDelete, base, nil, nil)
	if rec.Code != http.StatusOK || decode(t, rec)["success"] != true {
		t.Fatalf("delete = %d: %s", rec.Code, rec.Body.String())
	}

	rec = request(t, router, http.MethodDelete, base, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rec.Code)
	}
}

// TestDeltaRoundTrip checks the convergence property: applying a delta
// response on top of a stale snapshot reproduces the full fetch.
func TestDeltaRoundTrip(t *testing.T) {
	router := newTestRouter(t)
	base := "/api/room/deltarm1"

	fetch := func(since int64) map[string]any {
		rec := request(t, router, http.MethodGet, fmt.Sprintf("%s?since=%d", base, since), nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("fetch since=%d: %d", since, rec.Code)
		}
		return decode(t, rec)
	}

	// Seed three files, snapshot the state.
	for _, h := range []string{"ha", "hb", "hc"} {
		request(t, router, http.MethodPost, base+"/files", fileBody(h, "enc-"+h, "v1"), nil)
	}
	snapshot := fetch(0)
	since := int64(snapshot["version"].(float64))

	client := map[string]string{}
	for _, f := range snapshot["files"].([]any) {
		file := f.(map[string]any)
		client[file["path_hash"].(string)] = file["content_encrypted"].(string)
	}

	// Mutate: update hb, delete hc, create hd.
	request(t, router, http.MethodPost, base+"/files", fileBody("hb", "enc-hb", "v2"), nil)
	state := fetch(0)
	var hcID string
	for _, f := range state["files"].([]any) {
		file := f.(map[string]any)
		if file["path_hash"] == "hc" {
			hcID = file["id"].(string)
		}
	}
	request(t, router, http.MethodDelete, base+"/files/"+hcID, nil, nil)
	request(t, router, http.MethodPost, base+"/files", fileBody("hd", "enc-hd", "v1"), nil)

	// Apply the delta on the stale client state.
	delta := fetch(since)
	for _, f := range delta["files"].([]any) {
		file := f.(map[string]any)
		client[file["path_hash"].(string)] = file["content_encrypted"].(string)
	}
	for _, h := range delta["deleted_path_hashes"].([]any) {
		delete(client, h.(string))
	}

	// Compare with a fresh full fetch.
	full := fetch(0)
	want := map[string]string{}
	for _, f := range full["files"].([]any) {
		file := f.(map[string]any)
		want[file["path_hash"].(string)] = file["content_encrypted"].(string)
	}

	if len(client) != len(want) {
		t.Fatalf("client = %v, want %v", client, want)
	}
	for h, content := range want {
		if client[h] != content {
			t.Errorf("path %s: client %q, want %q", h, client[h], content)
		}
	}
}

func TestBodyLimit(t *testing.T) {
	st, err := store.New(&store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: ":memory:"},
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	tokens, err := auth.NewRoomTokenService(auth.Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}

	router := NewRouter(Dependencies{
		Store:        st,
		Sessions:     syncpkg.NewManager(syncpkg.Config{}),
		Tokens:       tokens,
		MaxBodyBytes: 1024,
	})

	big := make([]byte, 4096)
	for i := range big {
		big[i] = 'a'
	}
	rec := request(t, router, http.MethodPost, "/api/room/limit001/files",
		fileBody("aaaa0001", "enc-path", string(big)), nil)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized body status = %d, want 413", rec.Code)
	}

	rec = request(t, router, http.MethodPost, "/api/room/limit001/files",
		fileBody("aaaa0001", "enc-path", "small"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("small body status = %d, want 200", rec.Code)
	}
}
