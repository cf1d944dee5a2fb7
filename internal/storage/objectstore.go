package storage

import (
	"context"
	"io"
)

// PutRequest describes one object write to the destination store.
type PutRequest struct {
	Key           string
	Body          io.Reader
	ContentType   string
	ContentLength int64
	ContentMD5    string // standard base64 of the raw MD5 digest
	CacheControl  string
}

// ObjectStore provides write access to the destination store. Implementations
// are expected to verify the MD5 header and fail definitively; no
// partial-write recovery happens on this side.
type ObjectStore interface {
	Put(ctx context.Context, req PutRequest) error
}
