package render

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/docdiagrams/pkg/cache"
	"github.com/matzehuels/docdiagrams/pkg/diagram"
	"github.com/matzehuels/docdiagrams/pkg/errors"
	"github.com/matzehuels/docdiagrams/pkg/observability"
)

var fakePNG = []byte("\x89PNG\r\n\x1a\nfake-image")

// recorded is one request seen by the fake service.
type recorded struct {
	accept string
	body   string
}

// fakeKroki is a scripted rendering service. handle receives each request
// and its 0-based sequence number.
type fakeKroki struct {
	mu       sync.Mutex
	requests []recorded
	handle   func(w http.ResponseWriter, req recorded, n int)
}

func (f *fakeKroki) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	req := recorded{accept: r.Header.Get("Accept"), body: string(body)}

	f.mu.Lock()
	n := len(f.requests)
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	f.handle(w, req, n)
}

func (f *fakeKroki) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestRenderer(t *testing.T, url string, c cache.Cache) *Renderer {
	t.Helper()
	r, err := New(Options{BaseURL: url, Cache: c})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func testDiagram(source string) *diagram.Diagram {
	return &diagram.Diagram{Source: source, Type: diagram.Classify(source), Hash: diagram.Hash(source)}
}

func TestRenderSuccess(t *testing.T) {
	var gotPath, gotCT, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCT = r.Header.Get("Content-Type")
		gotUA = r.Header.Get("User-Agent")
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if accept := r.Header.Get("Accept"); accept != "image/png" {
			t.Errorf("Accept = %q, want image/png", accept)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(fakePNG)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "nested", "doc_start_01234567.png")
	tally := NewTally()

	r := newTestRenderer(t, srv.URL, nil)
	if err := r.Render(context.Background(), testDiagram("graph TD\n  A --> B"), out, tally); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(data) != string(fakePNG) {
		t.Errorf("output = %q, want service bytes", data)
	}
	if gotPath != "/mermaid/png" {
		t.Errorf("path = %q, want /mermaid/png", gotPath)
	}
	if gotCT != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", gotCT)
	}
	if !strings.HasPrefix(gotUA, "docdiagrams/") {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if tally.Total() != 0 {
		t.Errorf("tally = %v, want empty", tally)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(out))
	if len(entries) != 1 {
		t.Errorf("output dir has %d entries, want 1", len(entries))
	}
}

func TestRenderSendsPreprocessedBody(t *testing.T) {
	fk := &fakeKroki{handle: func(w http.ResponseWriter, req recorded, n int) {
		w.Write(fakePNG)
	}}
	srv := httptest.NewServer(fk)
	defer srv.Close()

	r := newTestRenderer(t, srv.URL, nil)
	out := filepath.Join(t.TempDir(), "x.png")
	if err := r.Render(context.Background(), testDiagram("graph TD\n  A[one\ntwo]"), out, nil); err != nil {
		t.Fatal(err)
	}
	if got := fk.requests[0].body; got != "graph TD\n  A[one<br/>two]" {
		t.Errorf("body = %q", got)
	}
}

func TestRenderInvalidSyntaxSkipsNetwork(t *testing.T) {
	fk := &fakeKroki{handle: func(w http.ResponseWriter, req recorded, n int) {
		w.Write(fakePNG)
	}}
	srv := httptest.NewServer(fk)
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "x.png")
	tally := NewTally()

	r := newTestRenderer(t, srv.URL, nil)
	err := r.Render(context.Background(), testDiagram("A --> B"), out, tally)
	if !errors.Is(err, errors.ErrCodeInvalidSyntax) {
		t.Fatalf("Render() error = %v, want INVALID_SYNTAX", err)
	}
	if fk.count() != 0 {
		t.Errorf("service saw %d requests, want 0", fk.count())
	}
	if tally[ReasonSyntax] != 1 {
		t.Errorf("tally = %v, want one syntax_error", tally)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no output should be written")
	}
}

func TestRenderParenthesisRetry(t *testing.T) {
	fk := &fakeKroki{handle: func(w http.ResponseWriter, req recorded, n int) {
		switch {
		case req.accept == "application/json":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":{"message":"Parse error: Expecting 'SQE', got 'PS'"}}`)
		case strings.Contains(req.body, "&#40;"):
			w.Header().Set("Content-Type", "image/png")
			w.Write(fakePNG)
		default:
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, "Error 400")
		}
	}}
	srv := httptest.NewServer(fk)
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "x.png")
	tally := NewTally()

	r := newTestRenderer(t, srv.URL, nil)
	err := r.Render(context.Background(), testDiagram("graph TD\n  A[Start (v2)] --> B"), out, tally)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if fk.count() != 3 {
		t.Errorf("service saw %d requests, want 3", fk.count())
	}
	if got := fk.requests[2].body; got != "graph TD\n  A[Start &#40;v2&#41;] --> B" {
		t.Errorf("retry body = %q", got)
	}
	if tally[ReasonParentheses] != 1 || tally.Total() != 1 {
		t.Errorf("tally = %v, want exactly one parentheses_in_labels", tally)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestRenderParenthesisRetryFails(t *testing.T) {
	fk := &fakeKroki{handle: func(w http.ResponseWriter, req recorded, n int) {
		if req.accept == "application/json" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":{"message":"got 'PS'"}}`)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	}}
	srv := httptest.NewServer(fk)
	defer srv.Close()

	tally := NewTally()
	r := newTestRenderer(t, srv.URL, nil)
	err := r.Render(context.Background(), testDiagram("graph TD\n  A[x (y)]"), filepath.Join(t.TempDir(), "x.png"), tally)
	if !errors.Is(err, errors.ErrCodeRenderRejected) {
		t.Fatalf("Render() error = %v, want RENDER_REJECTED", err)
	}
	if fk.count() != 3 {
		t.Errorf("service saw %d requests, want 3", fk.count())
	}
	if tally[ReasonParentheses] != 1 || tally.Total() != 1 {
		t.Errorf("tally = %v, want parentheses_in_labels counted once", tally)
	}
}

func TestRenderSyntaxRejection(t *testing.T) {
	fk := &fakeKroki{handle: func(w http.ResponseWriter, req recorded, n int) {
		if req.accept == "application/json" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":{"message":"Lexical error on line 2"}}`)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusBadRequest)
		w.Write(fakePNG)
	}}
	srv := httptest.NewServer(fk)
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "doc_x_01234567.png")
	tally := NewTally()

	r := newTestRenderer(t, srv.URL, nil)
	err := r.Render(context.Background(), testDiagram("graph TD\n  A -> "), out, tally)
	if !errors.Is(err, errors.ErrCodeRenderRejected) {
		t.Fatalf("Render() error = %v, want RENDER_REJECTED", err)
	}
	if !strings.Contains(err.Error(), "Lexical error") {
		t.Errorf("error should carry the service message: %v", err)
	}
	if fk.count() != 2 {
		t.Errorf("service saw %d requests, want 2", fk.count())
	}
	if tally[ReasonSyntax] != 1 {
		t.Errorf("tally = %v, want one syntax_error", tally)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output should not exist")
	}
	data, err := os.ReadFile(diagram.ErrorPath(out))
	if err != nil {
		t.Fatalf("error image not written: %v", err)
	}
	if string(data) != string(fakePNG) {
		t.Error("error image should hold the rejected response body")
	}
}

func TestRenderRejectionWithoutMessage(t *testing.T) {
	fk := &fakeKroki{handle: func(w http.ResponseWriter, req recorded, n int) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>bad gateway</html>")
	}}
	srv := httptest.NewServer(fk)
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "x.png")
	tally := NewTally()

	r := newTestRenderer(t, srv.URL, nil)
	err := r.Render(context.Background(), testDiagram("graph TD\n  A --> B"), out, tally)
	if !errors.Is(err, errors.ErrCodeRenderRejected) {
		t.Fatalf("Render() error = %v, want RENDER_REJECTED", err)
	}
	if tally[ReasonOther] != 1 || tally.Total() != 1 {
		t.Errorf("tally = %v, want one other", tally)
	}
	if _, err := os.Stat(diagram.ErrorPath(out)); !os.IsNotExist(err) {
		t.Error("non-image rejection should not produce an error image")
	}
}

func TestRenderConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	tally := NewTally()
	r := newTestRenderer(t, url, nil)
	err := r.Render(context.Background(), testDiagram("graph TD\n  A --> B"), filepath.Join(t.TempDir(), "x.png"), tally)
	if code := errors.GetCode(err); code != errors.ErrCodeNetwork && code != errors.ErrCodeTimeout {
		t.Fatalf("Render() error = %v, want NETWORK_ERROR or TIMEOUT", err)
	}
	if tally[ReasonConnection] != 1 || tally.Total() != 1 {
		t.Errorf("tally = %v, want one connection_error", tally)
	}
}

func TestRenderCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(fakePNG)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tally := NewTally()
	r := newTestRenderer(t, srv.URL, nil)
	err := r.Render(ctx, testDiagram("graph TD\n  A --> B"), filepath.Join(t.TempDir(), "x.png"), tally)
	if err != context.Canceled {
		t.Fatalf("Render() error = %v, want context.Canceled", err)
	}
	if tally.Total() != 0 {
		t.Errorf("cancellation should not be tallied: %v", tally)
	}
}

func TestRenderCacheHit(t *testing.T) {
	fk := &fakeKroki{handle: func(w http.ResponseWriter, req recorded, n int) {
		w.Write(fakePNG)
	}}
	srv := httptest.NewServer(fk)
	defer srv.Close()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRenderer(t, srv.URL, c)
	d := testDiagram("graph TD\n  A --> B")
	dir := t.TempDir()

	if err := r.Render(context.Background(), d, filepath.Join(dir, "a.png"), nil); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(context.Background(), d, filepath.Join(dir, "b.png"), nil); err != nil {
		t.Fatal(err)
	}

	if fk.count() != 1 {
		t.Errorf("service saw %d requests, want 1 (second served from cache)", fk.count())
	}
	data, err := os.ReadFile(filepath.Join(dir, "b.png"))
	if err != nil || string(data) != string(fakePNG) {
		t.Errorf("cached output = (%q, %v)", data, err)
	}
}

func TestRenderCacheSeparatesServices(t *testing.T) {
	first := &fakeKroki{handle: func(w http.ResponseWriter, req recorded, n int) { w.Write(fakePNG) }}
	second := &fakeKroki{handle: func(w http.ResponseWriter, req recorded, n int) { w.Write([]byte("\x89PNG other")) }}
	srv1 := httptest.NewServer(first)
	defer srv1.Close()
	srv2 := httptest.NewServer(second)
	defer srv2.Close()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	d := testDiagram("graph TD\n  A --> B")
	dir := t.TempDir()

	if err := newTestRenderer(t, srv1.URL, c).Render(context.Background(), d, filepath.Join(dir, "a.png"), nil); err != nil {
		t.Fatal(err)
	}
	if err := newTestRenderer(t, srv2.URL, c).Render(context.Background(), d, filepath.Join(dir, "b.png"), nil); err != nil {
		t.Fatal(err)
	}

	if second.count() != 1 {
		t.Errorf("second service saw %d requests, want 1 (cache entry belongs to the first)", second.count())
	}
	data, _ := os.ReadFile(filepath.Join(dir, "b.png"))
	if string(data) != "\x89PNG other" {
		t.Errorf("b.png = %q, want the second service's image", data)
	}
}

func TestRenderWriteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(fakePNG)
	}))
	defer srv.Close()

	// A regular file where a parent directory is expected.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tally := NewTally()
	r := newTestRenderer(t, srv.URL, nil)
	err := r.Render(context.Background(), testDiagram("graph TD\n  A --> B"), filepath.Join(blocker, "x.png"), tally)
	if !errors.Is(err, errors.ErrCodeWrite) {
		t.Fatalf("Render() error = %v, want WRITE_ERROR", err)
	}
	if tally[ReasonOther] != 1 {
		t.Errorf("tally = %v, want one other", tally)
	}
}

func TestNewOptions(t *testing.T) {
	r, err := New(Options{BaseURL: "http://localhost:8000/", Format: FormatSVG})
	if err != nil {
		t.Fatal(err)
	}
	if r.Endpoint() != "http://localhost:8000/mermaid/svg" {
		t.Errorf("Endpoint() = %q", r.Endpoint())
	}
	if r.Format() != FormatSVG {
		t.Errorf("Format() = %q", r.Format())
	}

	if _, err := New(Options{Format: "bmp"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("New(bmp) error = %v, want INVALID_FORMAT", err)
	}
	if _, err := New(Options{BaseURL: "ftp://x"}); err == nil {
		t.Error("New() should reject non-http base URLs")
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	observability.NoopHTTPHooks
	observability.NoopPipelineHooks
	hits, misses, sets int
	statuses           []int
	renders            int
	lastErr            error
}

func (h *countingHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func (h *countingHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.statuses = append(h.statuses, status)
}

func (h *countingHooks) OnRenderComplete(_ context.Context, _, _ string, _ time.Duration, err error) {
	h.renders++
	h.lastErr = err
}

func TestRenderEmitsHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(fakePNG)
	}))
	defer srv.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRenderer(t, srv.URL, fc)
	d := testDiagram("graph TD\n  A --> B")
	dir := t.TempDir()

	for _, name := range []string{"one.png", "two.png"} {
		if err := r.Render(context.Background(), d, filepath.Join(dir, name), NewTally()); err != nil {
			t.Fatal(err)
		}
	}

	if hooks.misses != 1 || hooks.hits != 1 || hooks.sets != 1 {
		t.Errorf("cache hooks hit=%d miss=%d set=%d, want 1/1/1", hooks.hits, hooks.misses, hooks.sets)
	}
	if len(hooks.statuses) != 1 || hooks.statuses[0] != http.StatusOK {
		t.Errorf("HTTP statuses = %v, want [200]", hooks.statuses)
	}
	if hooks.renders != 2 || hooks.lastErr != nil {
		t.Errorf("renders = %d, last err = %v", hooks.renders, hooks.lastErr)
	}
}
