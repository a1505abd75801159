package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not exist", &fs.PathError{Op: "open", Path: "/x", Err: syscall.ENOENT}, KindNotFound},
		{"not dir", &fs.PathError{Op: "open", Path: "/x/y", Err: syscall.ENOTDIR}, KindNotFound},
		{"permission", &fs.PathError{Op: "open", Path: "/x", Err: syscall.EACCES}, KindPermissionDenied},
		{"eperm", syscall.EPERM, KindPermissionDenied},
		{"is dir", &fs.PathError{Op: "read", Path: "/x", Err: syscall.EISDIR}, KindIO},
		{"bare errno", syscall.EIO, KindIO},
		{"unknown", errors.New("boom"), KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("open", "/x", tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassifyPassThrough(t *testing.T) {
	assert.NoError(t, Classify("read", "/x", nil))
	assert.Equal(t, context.Canceled, Classify("read", "/x", context.Canceled))

	wrapped := fmt.Errorf("waiting: %w", context.DeadlineExceeded)
	assert.Equal(t, wrapped, Classify("read", "/x", wrapped))

	existing := NewError(KindNotFound, "open", "/a", ErrNotFound)
	assert.Same(t, existing, Classify("read", "/b", existing))
}

func TestErrorIsSentinels(t *testing.T) {
	sentinels := map[Kind]error{
		KindNotFound:         ErrNotFound,
		KindPermissionDenied: ErrPermissionDenied,
		KindIO:               ErrIO,
		KindOther:            ErrOther,
	}

	for kind, sentinel := range sentinels {
		t.Run(kind.String(), func(t *testing.T) {
			err := fmt.Errorf("context: %w", NewError(kind, "read", "/a", errors.New("cause")))
			assert.ErrorIs(t, err, sentinel)
			for other, s := range sentinels {
				if other != kind {
					assert.NotErrorIs(t, err, s)
				}
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewError(KindOther, "read", "/a", ErrBusy)
	assert.Equal(t, "afile read /a: other: operation already in progress on handle", err.Error())
	assert.ErrorIs(t, err, ErrBusy)

	err = NewError(KindIO, "exists", "", errors.New("reset"))
	assert.Equal(t, "afile exists: i/o error: reset", err.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindOther, KindOf(errors.New("x")))
	assert.Equal(t, KindIO, KindOf(fmt.Errorf("w: %w", NewError(KindIO, "read", "", nil))))
}

func TestStatusError(t *testing.T) {
	err := NewError(KindOther, "read", "http://o/a", &StatusError{Code: 502})
	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, 502, status.Code)
	assert.Contains(t, err.Error(), "unexpected status 502")
}
