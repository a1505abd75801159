package remote

import (
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/marmos91/afile/pkg/backend"
)

// Origin is the base URL paths are resolved against. Set and Get are atomic:
// the last writer wins and the value is visible to the next request.
type Origin struct {
	v atomic.Pointer[string]
}

// DefaultOrigin is used by backends constructed without their own Origin.
var DefaultOrigin = &Origin{}

// NewOrigin returns an Origin holding base.
func NewOrigin(base string) *Origin {
	o := &Origin{}
	o.Set(base)
	return o
}

// SetDefaultOrigin sets DefaultOrigin.
func SetDefaultOrigin(base string) {
	DefaultOrigin.Set(base)
}

func (o *Origin) Set(base string) {
	o.v.Store(&base)
}

// Get returns the current base URL, or "" when none is set.
func (o *Origin) Get() string {
	if p := o.v.Load(); p != nil {
		return *p
	}
	return ""
}

// Resolve joins path onto the current origin as origin + "/" + path,
// collapsing duplicate slashes at the seam.
func (o *Origin) Resolve(path string) (*url.URL, error) {
	base := o.Get()
	if base == "" {
		return nil, backend.ErrNoOrigin
	}

	raw := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", raw, err)
	}

	switch u.Scheme {
	case "http", "https", "s3":
	default:
		return nil, fmt.Errorf("unsupported origin scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("origin %q has no host", base)
	}
	return u, nil
}
