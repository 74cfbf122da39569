package codec

import (
	"errors"
	"fmt"
)

var (
	ErrNotMessage       = errors.New("codec: frame is noise")
	ErrLengthMismatch   = errors.New("codec: body length mismatch")
	ErrElementAlignment = errors.New("codec: body not a whole number of elements")
	ErrChecksumMismatch = errors.New("codec: checksum mismatch")
	ErrTruncatedBody    = errors.New("codec: truncated body")
)

// ErrorKind classifies a recoverable decode failure.
type ErrorKind uint8

const (
	LengthMismatch ErrorKind = iota + 1
	ElementAlignment
	ChecksumMismatch
	TruncatedBody
)

var errorKinds = map[ErrorKind]struct {
	name     string
	sentinel error
}{
	LengthMismatch:   {"length_mismatch", ErrLengthMismatch},
	ElementAlignment: {"element_alignment", ErrElementAlignment},
	ChecksumMismatch: {"checksum_mismatch", ErrChecksumMismatch},
	TruncatedBody:    {"truncated_body", ErrTruncatedBody},
}

func (k ErrorKind) String() string {
	if e, ok := errorKinds[k]; ok {
		return e.name
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// DecodeError reports a malformed message. The frame is kept so the caller
// can log or archive the original bytes.
//
// Expected and Actual are lengths in bytes, except for ElementAlignment
// (Expected is the element width) and ChecksumMismatch (computed and
// declared checksum).
type DecodeError struct {
	Kind     ErrorKind
	ID       ID
	Expected int
	Actual   int
	Frame    Frame
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case ChecksumMismatch:
		return fmt.Sprintf("%s: id=%s computed=%08x declared=%08x", e.sentinelOrKind(), e.ID, e.Expected, e.Actual)
	case ElementAlignment:
		return fmt.Sprintf("%s: id=%s len=%d element_width=%d", e.sentinelOrKind(), e.ID, e.Actual, e.Expected)
	default:
		return fmt.Sprintf("%s: id=%s expected=%d actual=%d", e.sentinelOrKind(), e.ID, e.Expected, e.Actual)
	}
}

func (e *DecodeError) sentinelOrKind() string {
	if k, ok := errorKinds[e.Kind]; ok {
		return k.sentinel.Error()
	}
	return e.Kind.String()
}

// TruncatedError reports a frame whose body was cut off by the end of the
// source.
func TruncatedError(f Frame) *DecodeError {
	return &DecodeError{Kind: TruncatedBody, ID: f.ID, Expected: f.Declared, Actual: len(f.Body), Frame: f}
}

// Is matches the sentinel of the error kind.
func (e *DecodeError) Is(target error) bool {
	k, ok := errorKinds[e.Kind]
	return ok && k.sentinel == target
}

// KindOf extracts the decode error kind from err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}
