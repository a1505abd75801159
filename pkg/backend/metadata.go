package backend

import (
	"io/fs"
	"time"
)

// Metadata is an immutable snapshot of file attributes.
//
// It is returned by value and is not kept in sync with the file: a later
// change to the underlying resource is only visible through a new metadata
// query.
//
// Backends fill the fields they can observe:
//   - pool: Size, ModTime, Mode
//   - remote: Size, ModTime (Last-Modified), ContentType, ETag
type Metadata struct {
	// Size is the length of the file in bytes. Character devices such as
	// /dev/zero report 0.
	Size uint64

	// ModTime is the last modification time, zero when unknown.
	ModTime time.Time

	// Mode carries the platform file mode bits, zero on the remote backend.
	Mode fs.FileMode

	// ContentType is the remote Content-Type, empty on the pool backend.
	ContentType string

	// ETag is the remote entity tag, empty on the pool backend.
	ETag string
}

// Len returns the size of the file in bytes.
func (m Metadata) Len() uint64 {
	return m.Size
}

// IsDir reports whether the metadata describes a directory.
func (m Metadata) IsDir() bool {
	return m.Mode.IsDir()
}
