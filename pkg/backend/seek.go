package backend

import (
	"fmt"
	"math"
)

// Whence selects the reference point of a SeekFrom.
type Whence int

const (
	SeekStart Whence = iota
	SeekCurrent
	SeekEnd
)

func (w Whence) String() string {
	switch w {
	case SeekStart:
		return "start"
	case SeekCurrent:
		return "current"
	case SeekEnd:
		return "end"
	default:
		return fmt.Sprintf("whence(%d)", int(w))
	}
}

// SeekFrom is a seek target: an absolute offset from the start, or a signed
// offset relative to the current position or to the end.
type SeekFrom struct {
	Whence Whence

	// Start is used when Whence is SeekStart.
	Start uint64

	// Delta is used when Whence is SeekCurrent or SeekEnd.
	Delta int64
}

// Start seeks to an absolute offset.
func Start(offset uint64) SeekFrom {
	return SeekFrom{Whence: SeekStart, Start: offset}
}

// Current seeks relative to the current position.
func Current(delta int64) SeekFrom {
	return SeekFrom{Whence: SeekCurrent, Delta: delta}
}

// End seeks relative to the end of the file.
func End(delta int64) SeekFrom {
	return SeekFrom{Whence: SeekEnd, Delta: delta}
}

func (s SeekFrom) String() string {
	if s.Whence == SeekStart {
		return fmt.Sprintf("start(%d)", s.Start)
	}
	return fmt.Sprintf("%s(%d)", s.Whence, s.Delta)
}

// ResolveSeek computes the position a seek lands on. size is only consulted
// for SeekEnd. Results below zero or beyond math.MaxInt64 yield
// ErrInvalidSeek, the latter because positions must stay representable as
// platform offsets.
func ResolveSeek(current uint64, pos SeekFrom, size uint64) (uint64, error) {
	var base uint64
	switch pos.Whence {
	case SeekStart:
		if pos.Start > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %s", ErrInvalidSeek, pos)
		}
		return pos.Start, nil
	case SeekCurrent:
		base = current
	case SeekEnd:
		base = size
	default:
		return 0, fmt.Errorf("%w: unknown whence %d", ErrInvalidSeek, pos.Whence)
	}

	if pos.Delta < 0 {
		back := uint64(-(pos.Delta + 1)) + 1
		if back > base {
			return 0, fmt.Errorf("%w: %s from %d", ErrInvalidSeek, pos, base)
		}
		return base - back, nil
	}

	next := base + uint64(pos.Delta)
	if next < base || next > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %s from %d overflows", ErrInvalidSeek, pos, base)
	}
	return next, nil
}
