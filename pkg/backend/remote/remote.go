// Package remote implements the remote-fetch backend.
//
// Paths are resolved against an Origin (http, https or s3 base URL) and
// served with HEAD and ranged GET requests. Nothing is held open between
// operations: a remote resource is just a path plus the backend that
// resolves it, so the cursor remains the handle's business.
//
// Cancellation is cooperative. Every request carries the operation's
// context, and response bodies are drained inside the request, so an
// abandoned read never produces a buffer.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/afile/internal/logger"
	"github.com/marmos91/afile/internal/ratelimiter"
	"github.com/marmos91/afile/pkg/backend"
	"github.com/marmos91/afile/pkg/priority"
)

// Name is the backend name used in logs and metrics.
const Name = "remote"

// Config holds the remote backend options.
type Config struct {
	// Origin resolves paths. Nil selects DefaultOrigin.
	Origin *Origin

	// HTTPClient serves http and https origins. Nil selects a client with
	// no timeout of its own (see Timeout).
	HTTPClient *http.Client

	// S3 serves s3:// origins. Without it, s3 URLs fail with KindOther.
	S3 *s3.Client

	// Limiter throttles requests. Nil means unlimited.
	Limiter *ratelimiter.RateLimiter

	// Timeout bounds each request. Zero means no per-request timeout; the
	// caller's context still applies.
	Timeout time.Duration

	// UserAgent is sent on http and https requests when non-empty.
	UserAgent string

	// Metrics receives operation metrics. Optional.
	Metrics backend.Metrics
}

// Backend fetches resources from an origin.
//
// Thread Safety:
// Safe for concurrent use. The origin may change between any two requests.
type Backend struct {
	origin  *Origin
	http    transport
	s3      transport
	limiter *ratelimiter.RateLimiter
	timeout time.Duration
	metrics backend.Metrics
}

var (
	_ backend.Backend      = (*Backend)(nil)
	_ backend.OriginSetter = (*Backend)(nil)
)

// New creates a remote backend.
func New(cfg Config) *Backend {
	origin := cfg.Origin
	if origin == nil {
		origin = DefaultOrigin
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	b := &Backend{
		origin:  origin,
		http:    &httpTransport{client: client, userAgent: cfg.UserAgent},
		limiter: cfg.Limiter,
		timeout: cfg.Timeout,
		metrics: backend.MetricsOrNoop(cfg.Metrics),
	}
	if cfg.S3 != nil {
		b.s3 = &s3Transport{client: cfg.S3}
	}
	return b
}

func (b *Backend) Name() string { return Name }

// SetOrigin replaces the base URL of this backend's Origin. For a backend
// using DefaultOrigin this is the process-wide default.
func (b *Backend) SetOrigin(origin string) {
	b.origin.Set(origin)
	logger.Info("remote: origin set to %q", origin)
}

// Open probes path with a HEAD request.
//
// Status mapping:
//   - 2xx      → resource
//   - 404, 410 → KindNotFound
//   - 401, 403 → KindPermissionDenied
//   - other    → KindOther
//   - no reply → KindIO
func (b *Backend) Open(ctx context.Context, path string, p priority.Priority) (backend.Resource, error) {
	resp, err := b.roundTrip(ctx, "open", path, http.MethodHead, "", p)
	if err != nil {
		return nil, err
	}
	if !success(resp.status) {
		return nil, statusError("open", path, resp.status)
	}

	logger.Debug("remote: opened %s (priority=%s)", path, p)
	return &resource{backend: b, path: path}, nil
}

// Exists reports whether a HEAD request for path succeeds.
func (b *Backend) Exists(ctx context.Context, path string, p priority.Priority) bool {
	resp, err := b.roundTrip(ctx, "exists", path, http.MethodHead, "", p)
	return err == nil && success(resp.status)
}

// roundTrip resolves path against the current origin and issues one
// request. The caller owns resp.body. Error statuses are not errors here.
func (b *Backend) roundTrip(ctx context.Context, op, path, method, rangeHdr string, p priority.Priority) (resp *response, err error) {
	start := time.Now()
	defer func() {
		if backend.IsContextError(err) {
			b.metrics.RecordAbandoned(Name, op)
		}
		b.metrics.ObserveOperation(Name, op, time.Since(start), err)
	}()

	u, err := b.origin.Resolve(path)
	if err != nil {
		return nil, backend.NewError(backend.KindOther, op, path, err)
	}

	var t transport
	switch u.Scheme {
	case "http", "https":
		t = b.http
	case "s3":
		t = b.s3
	}
	if t == nil {
		return nil, backend.NewError(backend.KindOther, op, u.String(),
			fmt.Errorf("no client configured for scheme %q", u.Scheme))
	}

	if err := b.limiter.Wait(ctx); err != nil {
		if backend.IsContextError(err) {
			return nil, err
		}
		return nil, backend.NewError(backend.KindOther, op, u.String(), err)
	}

	reqCtx := ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, b.timeout)
		// GET bodies outlive this call, so the timer is released when the
		// body is closed instead.
		if method == http.MethodGet {
			defer func() {
				if resp == nil || resp.body == nil {
					cancel()
					return
				}
				resp.body = &cancelOnClose{ReadCloser: resp.body, cancel: cancel}
			}()
		} else {
			defer cancel()
		}
	}

	resp, err = t.do(reqCtx, request{method: method, url: u, rangeHdr: rangeHdr, priority: p})
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, backend.NewError(backend.KindIO, op, u.String(), err)
	}
	return resp, nil
}

// requestError maps a failure while draining a response body. The caller's
// cancellation wins over whatever the body reported.
func requestError(ctx context.Context, op, path string, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	var existing *backend.Error
	if errors.As(err, &existing) {
		return err
	}
	return backend.NewError(backend.KindIO, op, path, err)
}

func statusError(op, path string, code int) error {
	kind := backend.KindOther
	switch code {
	case http.StatusNotFound, http.StatusGone:
		kind = backend.KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = backend.KindPermissionDenied
	}
	return backend.NewError(kind, op, path, &backend.StatusError{Code: code})
}

func success(status int) bool {
	return status >= 200 && status < 300
}
