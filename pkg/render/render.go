package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/docdiagrams/pkg/buildinfo"
	"github.com/matzehuels/docdiagrams/pkg/cache"
	"github.com/matzehuels/docdiagrams/pkg/diagram"
	"github.com/matzehuels/docdiagrams/pkg/errors"
	"github.com/matzehuels/docdiagrams/pkg/httputil"
	"github.com/matzehuels/docdiagrams/pkg/observability"
)

const (
	// DefaultBaseURL is the public Kroki instance.
	DefaultBaseURL = "https://kroki.io"

	cacheNamespace = "render"
	previewLen     = 200
)

var pngMagic = []byte("\x89PNG")

// Options configures a Renderer. Zero values select defaults.
type Options struct {
	BaseURL  string        // Service root (default DefaultBaseURL)
	Language string        // Diagram language path segment (default "mermaid")
	Format   string        // png, svg or pdf (default png)
	Client   *http.Client  // HTTP client (default httputil.NewClient)
	Cache    cache.Cache   // Render cache (default NullCache)
	CacheTTL time.Duration // Lifetime of cache entries, 0 = no expiry
	Logger   *log.Logger   // Logger (default discards)
}

// Renderer renders diagrams through a Kroki-compatible service.
// It is safe for sequential use.
type Renderer struct {
	endpoint string
	format   string
	mime     string
	client   *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *log.Logger
}

// New validates opts and returns a Renderer.
func New(opts Options) (*Renderer, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Language == "" {
		opts.Language = diagram.FenceLanguage
	}
	if opts.Format == "" {
		opts.Format = FormatPNG
	}
	if err := errors.ValidateURL(opts.BaseURL); err != nil {
		return nil, err
	}
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}
	if opts.Client == nil {
		opts.Client = httputil.NewClient(0)
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &Renderer{
		endpoint: fmt.Sprintf("%s/%s/%s", strings.TrimRight(opts.BaseURL, "/"), opts.Language, opts.Format),
		format:   opts.Format,
		mime:     MimeType(opts.Format),
		client:   opts.Client,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   opts.Logger,
	}, nil
}

// Format returns the output format the renderer requests.
func (r *Renderer) Format() string { return r.format }

// Endpoint returns the URL rendering requests are posted to.
func (r *Renderer) Endpoint() string { return r.endpoint }

// Render renders d to outputPath and records any failure in tally.
//
// The returned error carries INVALID_SYNTAX for blocks rejected locally,
// NETWORK_ERROR or TIMEOUT when the service cannot be reached, WRITE_ERROR
// when the image cannot be stored, and RENDER_REJECTED when the service
// refuses the diagram. A cancelled ctx is returned as is and not tallied.
func (r *Renderer) Render(ctx context.Context, d *diagram.Diagram, outputPath string, tally Tally) (err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, string(d.Type), r.format)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, string(d.Type), r.format, time.Since(start), err) }()

	if err := Validate(d.Source); err != nil {
		tally.Add(ReasonSyntax)
		return err
	}

	body := Preprocess(d.Source)
	key := cache.Key(cacheNamespace, r.endpoint, body)

	if data, ok := r.cached(ctx, key); ok {
		if err := writeFileAtomic(outputPath, data); err != nil {
			tally.Add(ReasonOther)
			return err
		}
		r.logger.Debug("served from cache", "file", filepath.Base(outputPath))
		return nil
	}

	first, err := r.post(ctx, body, r.mime)
	if err != nil {
		return r.transportFailure(ctx, err, tally)
	}
	if first.status == http.StatusOK {
		return r.store(ctx, key, outputPath, first.body, tally)
	}

	msg, hasMsg := r.errorMessage(ctx, body)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	parens := hasMsg && IsParenthesisFailure(msg)
	if parens {
		tally.Add(ReasonParentheses)
		r.logger.Debug("retrying with escaped label parentheses", "file", filepath.Base(outputPath))

		retry, err := r.post(ctx, SanitizeParentheses(body), r.mime)
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			r.logger.Debug("sanitized retry failed", "err", err)
		case retry.status == http.StatusOK:
			return r.store(ctx, key, outputPath, retry.body, tally)
		}
	}

	if first.isImage() {
		errPath := diagram.ErrorPath(outputPath)
		if err := writeFileAtomic(errPath, first.body); err != nil {
			r.logger.Warn("cannot save error image", "file", errPath, "err", err)
		} else {
			r.logger.Debug("saved error image", "file", errPath)
		}
	}

	switch {
	case parens:
		// counted before the retry
	case hasMsg:
		tally.Add(ReasonSyntax)
	default:
		tally.Add(ReasonOther)
	}

	detail := msg
	if !hasMsg {
		detail = first.preview()
	}
	return errors.New(errors.ErrCodeRenderRejected, "HTTP %d: %s", first.status, detail)
}

type response struct {
	status      int
	contentType string
	body        []byte
}

func (resp *response) isImage() bool {
	return strings.HasPrefix(resp.contentType, "image/") || bytes.HasPrefix(resp.body, pngMagic)
}

func (resp *response) preview() string {
	text := strings.TrimSpace(string(resp.body))
	if r := []rune(text); len(r) > previewLen {
		text = string(r[:previewLen])
	}
	return text
}

func (r *Renderer) post(ctx context.Context, body, accept string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, err
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
	}, nil
}

// errorMessage asks the service for a JSON description of why body was
// rejected. It reports false when no message could be obtained.
func (r *Renderer) errorMessage(ctx context.Context, body string) (string, bool) {
	resp, err := r.post(ctx, body, "application/json")
	if err != nil || !strings.HasPrefix(resp.contentType, "application/json") {
		return "", false
	}
	return parseErrorMessage(resp.body)
}

// parseErrorMessage extracts error.message from a JSON payload, falling
// back to the raw JSON text.
func parseErrorMessage(data []byte) (string, bool) {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		var probe any
		if json.Unmarshal(data, &probe) != nil {
			return "", false
		}
	}
	if payload.Error.Message != "" {
		return payload.Error.Message, true
	}
	raw := strings.TrimSpace(string(data))
	return raw, raw != ""
}

func (r *Renderer) transportFailure(ctx context.Context, err error, tally Tally) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	tally.Add(ReasonConnection)
	return httputil.TransportError(err, r.endpoint)
}

func (r *Renderer) cached(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Debug("cache read failed", "err", err)
		return nil, false
	}
	if !ok || len(data) == 0 {
		observability.Cache().OnCacheMiss(ctx, cacheNamespace)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cacheNamespace)
	return data, true
}

func (r *Renderer) store(ctx context.Context, key, outputPath string, data []byte, tally Tally) error {
	if err := writeFileAtomic(outputPath, data); err != nil {
		tally.Add(ReasonOther)
		return err
	}
	if err := r.cache.Set(ctx, key, data, r.cacheTTL); err != nil {
		r.logger.Debug("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, cacheNamespace, len(data))
	}
	return nil
}

// writeFileAtomic writes data to a temporary file beside path and renames
// it into place, creating parent directories as needed.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".docdiagrams-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "write %s", path)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(tmpName, 0o644)
	}
	if werr == nil {
		werr = os.Rename(tmpName, path)
	}
	if werr != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeWrite, werr, "write %s", path)
	}
	return nil
}
