package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/marmos91/afile/pkg/priority"
)

// request is one HEAD or GET against a resolved URL.
type request struct {
	method   string
	url      *url.URL
	rangeHdr string
	priority priority.Priority
}

// response is the transport-neutral view of a reply. An error status is a
// response, not an error: transports only fail for requests that produced
// no status at all.
type response struct {
	status        int
	body          io.ReadCloser
	contentLength int64
	contentRange  string
	contentType   string
	etag          string
	lastModified  time.Time
}

func (r *response) close() {
	if r.body != nil {
		_ = r.body.Close()
	}
}

// transport issues requests for one family of URL schemes.
type transport interface {
	do(ctx context.Context, req request) (*response, error)
}

// httpTransport serves http and https origins.
type httpTransport struct {
	client    *http.Client
	userAgent string
}

func (t *httpTransport) do(ctx context.Context, req request) (*response, error) {
	hreq, err := http.NewRequestWithContext(ctx, req.method, req.url.String(), nil)
	if err != nil {
		return nil, err
	}
	if req.rangeHdr != "" {
		hreq.Header.Set("Range", req.rangeHdr)
	}
	// RFC 9218 extensible priority
	hreq.Header.Set("Priority", fmt.Sprintf("u=%d", req.priority.Urgency()))
	if t.userAgent != "" {
		hreq.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.client.Do(hreq)
	if err != nil {
		return nil, err
	}

	out := &response{
		status:        resp.StatusCode,
		body:          resp.Body,
		contentLength: resp.ContentLength,
		contentRange:  resp.Header.Get("Content-Range"),
		contentType:   resp.Header.Get("Content-Type"),
		etag:          resp.Header.Get("ETag"),
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if ts, err := http.ParseTime(lm); err == nil {
			out.lastModified = ts
		}
	}
	if req.method == http.MethodHead {
		out.close()
		out.body = nil
	}
	return out, nil
}
