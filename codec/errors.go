package codec

import "errors"

var (
	// ErrMalformedEncoding indicates truncated or non-canonical bytes.
	ErrMalformedEncoding = errors.New("codec: malformed encoding")
)
