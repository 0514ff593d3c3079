package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juiceshop/findit/internal/accuracy"
	"github.com/juiceshop/findit/internal/auth"
	"github.com/juiceshop/findit/internal/challenges"
	"github.com/juiceshop/findit/internal/config"
	"github.com/juiceshop/findit/internal/findit"
	"github.com/juiceshop/findit/internal/reviews"
	"github.com/juiceshop/findit/internal/snippets"
	"github.com/juiceshop/findit/internal/store"
	"github.com/juiceshop/findit/internal/verdict"
)

const directorySource = "// vuln-code-snippet start directoryListingChallenge\n" +
	"app.use('/ftp', serveIndex('ftp')) // vuln-code-snippet vuln-line directoryListingChallenge\n" +
	"app.use('/ftp/:file', fileServer()) // vuln-code-snippet neutral-line directoryListingChallenge\n" +
	"app.use('/public', express.static('public'))\n" +
	"// vuln-code-snippet end directoryListingChallenge\n"

const directoryInfo = "fixes:\n" +
	"  - id: 1\n" +
	"    explanation: Remove the directory listing.\n" +
	"hints:\n" +
	"  - Which route exposes a whole folder?\n" +
	"  - Look for serveIndex.\n"

type fixture struct {
	handler http.Handler
	tracker *accuracy.Tracker
}

func newFixture(t *testing.T, source string) *fixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "server.ts"), []byte(source), 0o644))
	infoDir := filepath.Join(dir, "codefixes")
	require.NoError(t, os.MkdirAll(infoDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(infoDir, "directoryListingChallenge.info.yml"), []byte(directoryInfo), 0o644))

	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	tracker := accuracy.NewTracker(st.VerdictRepo(), nil)
	fi := findit.NewService(snippets.NewRepository([]string{dir}, nil), challenges.NewLoader(infoDir), tracker, nil)
	rv := reviews.NewService(st.ReviewRepo(), nil)
	users := auth.NewUsers([]config.UserConfig{
		{ID: 1, Email: "admin@juice-sh.op", Token: "admin-token"},
	})

	srv := New(config.ServerConfig{RequestTimeout: 5 * time.Second}, fi, rv, users, nil)
	return &fixture{handler: srv.Handler(), tracker: tracker}
}

func (f *fixture) do(t *testing.T, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), "body: %s", w.Body.String())
	return w, decoded
}

func TestListSnippets(t *testing.T) {
	f := newFixture(t, directorySource)

	w, body := f.do(t, "GET", "/snippets", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"directoryListingChallenge"}, body["challenges"])
}

func TestGetSnippet(t *testing.T) {
	f := newFixture(t, directorySource)

	w, body := f.do(t, "GET", "/snippets/directoryListingChallenge", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t,
		"app.use('/ftp', serveIndex('ftp'))\napp.use('/ftp/:file', fileServer())\napp.use('/public', express.static('public'))",
		body["snippet"])
}

func TestGetSnippet_NotFound(t *testing.T) {
	f := newFixture(t, directorySource)

	w, body := f.do(t, "GET", "/snippets/scoreBoardChallenge", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, map[string]any{
		"status": "error",
		"error":  "No code challenge for challenge key: scoreBoardChallenge",
	}, body)
}

func TestBrokenBoundary(t *testing.T) {
	f := newFixture(t, "// vuln-code-snippet start directoryListingChallenge\nfoo()\n")

	w, body := f.do(t, "GET", "/snippets/directoryListingChallenge", "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["error"], "Broken code snippet boundaries for: directoryListingChallenge")

	w, _ = f.do(t, "POST", "/snippets/verdict", `{"key":"directoryListingChallenge","selectedLines":[1]}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestVerdict_Correct(t *testing.T) {
	f := newFixture(t, directorySource)

	w, body := f.do(t, "POST", "/snippets/verdict", `{"key":"directoryListingChallenge","selectedLines":[1,2]}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"verdict": true}, body)

	acc, err := f.tracker.FindItAccuracy(context.Background(), "directoryListingChallenge")
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)
}

func TestVerdict_HintLadder(t *testing.T) {
	f := newFixture(t, directorySource)
	const fallback = "Line 1 is responsible for this vulnerability or security flaw. Select it and submit to proceed."

	steps := []struct {
		body string
		hint string
	}{
		{`{"key":"directoryListingChallenge","selectedLines":[2]}`, "Which route exposes a whole folder?"},
		{`{"key":"directoryListingChallenge","selectedLines":[1,3]}`, "Look for serveIndex."},
		{`{"key":"directoryListingChallenge","selectedLines":[]}`, fallback},
		{`{"key":"directoryListingChallenge"}`, fallback},
	}
	for i, step := range steps {
		w, body := f.do(t, "POST", "/snippets/verdict", step.body, nil)
		require.Equal(t, http.StatusOK, w.Code, "step %d", i+1)
		assert.Equal(t, false, body["verdict"], "step %d", i+1)
		assert.Equal(t, step.hint, body["hint"], "step %d", i+1)
	}

	w, body := f.do(t, "POST", "/snippets/verdict", `{"key":"directoryListingChallenge","selectedLines":[1]}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["verdict"])

	acc, err := f.tracker.FindItAccuracy(context.Background(), "directoryListingChallenge")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, acc, 1e-9)

	// Solved challenges stop counting attempts.
	f.do(t, "POST", "/snippets/verdict", `{"key":"directoryListingChallenge","selectedLines":[3]}`, nil)
	attempts, err := f.tracker.FindItAttempts(context.Background(), "directoryListingChallenge")
	require.NoError(t, err)
	assert.Equal(t, 5, attempts)
}

func TestVerdict_UnknownChallenge(t *testing.T) {
	f := newFixture(t, directorySource)

	w, body := f.do(t, "POST", "/snippets/verdict", `{"key":"scoreBoardChallenge","selectedLines":[1]}`, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No code challenge for challenge key: scoreBoardChallenge", body["error"])
}

func TestVerdict_InvalidBody(t *testing.T) {
	f := newFixture(t, directorySource)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"key":`},
		{"missing key", `{"selectedLines":[1]}`},
		{"empty key", `{"key":"","selectedLines":[1]}`},
		{"lines not a list", `{"key":"directoryListingChallenge","selectedLines":"1"}`},
		{"non-integer line", `{"key":"directoryListingChallenge","selectedLines":[1.5]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := f.do(t, "POST", "/snippets/verdict", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "error", body["status"])
		})
	}
}

func TestReviews(t *testing.T) {
	f := newFixture(t, directorySource)
	authz := map[string]string{"Authorization": "Bearer admin-token"}

	w, body := f.do(t, "PUT", "/rest/products/1/reviews", `{"message":"Tasty","author":"admin@juice-sh.op"}`, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, map[string]any{"error": "Unauthorized"}, body)

	w, _ = f.do(t, "PUT", "/rest/products/1/reviews", `{"message":"Tasty","author":"bender@juice-sh.op"}`, authz)
	require.Equal(t, http.StatusForbidden, w.Code)

	w, _ = f.do(t, "PUT", "/rest/products/1/reviews", `{"message":"  "}`, authz)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, body = f.do(t, "PUT", "/rest/products/1/reviews", `{"message":"Tasty","author":"admin@juice-sh.op"}`, authz)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", body["status"])
	review, ok := body["review"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "admin@juice-sh.op", review["author"])
	assert.Equal(t, float64(0), review["likesCount"])
	assert.Equal(t, []any{}, review["likedBy"])

	w, body = f.do(t, "GET", "/rest/products/1/reviews", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 1)
	assert.Equal(t, "Tasty", data[0].(map[string]any)["message"])

	w, body = f.do(t, "GET", "/rest/products/2/reviews", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, body["data"])
}

func TestServe_GracefulShutdown(t *testing.T) {
	srv := New(config.ServerConfig{ShutdownTimeout: time.Second}, nil, nil, auth.NewUsers(nil), nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

// blockingTracker holds a verdict until released.
type blockingTracker struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingTracker) StoreFindItVerdict(context.Context, string, bool, verdict.Selection) (int, error) {
	close(b.entered)
	<-b.release
	return 1, nil
}

func TestServe_ShutdownFinishesInFlightRequests(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "server.ts"), []byte(directorySource), 0o644))
	infoDir := filepath.Join(dir, "codefixes")
	require.NoError(t, os.MkdirAll(infoDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(infoDir, "directoryListingChallenge.info.yml"), []byte(directoryInfo), 0o644))

	tracker := &blockingTracker{entered: make(chan struct{}), release: make(chan struct{})}
	fi := findit.NewService(snippets.NewRepository([]string{dir}, nil), challenges.NewLoader(infoDir), tracker, nil)
	srv := New(config.ServerConfig{ShutdownTimeout: 5 * time.Second}, fi, nil, auth.NewUsers(nil), nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	type reply struct {
		code int
		body map[string]any
		err  error
	}
	replies := make(chan reply, 1)
	go func() {
		resp, err := http.Post("http://"+ln.Addr().String()+"/snippets/verdict", "application/json",
			strings.NewReader(`{"key":"directoryListingChallenge","selectedLines":[2]}`))
		if err != nil {
			replies <- reply{err: err}
			return
		}
		defer resp.Body.Close()
		var body map[string]any
		err = json.NewDecoder(resp.Body).Decode(&body)
		replies <- reply{code: resp.StatusCode, body: body, err: err}
	}()

	select {
	case <-tracker.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the tracker")
	}
	cancel()
	close(tracker.release)

	select {
	case r := <-replies:
		require.NoError(t, r.err)
		assert.Equal(t, http.StatusOK, r.code, "body: %v", r.body)
		assert.Equal(t, "Which route exposes a whole folder?", r.body["hint"])
	case <-time.After(5 * time.Second):
		t.Fatal("no response")
	}
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
