package afile

import (
	"bytes"
	"io"
)

// Data is a byte buffer produced by a read.
//
// The buffer was allocated by the backend inside the operation itself, never
// supplied by the caller, and it is independent of the File it came from:
// closing the handle does not invalidate it.
type Data struct {
	buf []byte
}

func newData(b []byte) Data {
	return Data{buf: b}
}

// Len returns the number of bytes held.
func (d Data) Len() int {
	return len(d.buf)
}

// Bytes returns the underlying buffer. The caller owns it from then on;
// use Clone first if the Data value will keep being used.
func (d Data) Bytes() []byte {
	return d.buf
}

// Clone returns a Data with its own copy of the bytes.
func (d Data) Clone() Data {
	if d.buf == nil {
		return Data{}
	}
	return Data{buf: bytes.Clone(d.buf)}
}

// Equal reports whether d and other hold the same bytes.
func (d Data) Equal(other Data) bool {
	return bytes.Equal(d.buf, other.buf)
}

// Reader returns a reader over the bytes.
func (d Data) Reader() *bytes.Reader {
	return bytes.NewReader(d.buf)
}

// WriteTo implements io.WriterTo.
func (d Data) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.buf)
	return int64(n), err
}

func (d Data) String() string {
	return string(d.buf)
}
