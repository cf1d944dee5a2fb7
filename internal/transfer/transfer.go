package transfer

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/tendant/simple-media-migrate/internal/links"
	"github.com/tendant/simple-media-migrate/internal/storage"
	"github.com/tendant/simple-media-migrate/pkg/imageset"
)

const (
	// chunkSize is the read buffer used while digesting source bytes.
	chunkSize = 8192

	yearSeconds = 365 * 24 * 3600
)

// cacheControl marks uploaded objects immutable for a year. Objects are never
// rewritten in place: a changed image is always a new capability key.
var cacheControl = fmt.Sprintf("public, max-age=%d, immutable", yearSeconds)

var (
	// ErrIntegrity is returned when the source bytes do not hash to the
	// digest the media record claims.
	ErrIntegrity = errors.New("source content digest mismatch")

	// ErrTransfer is returned when the destination store rejects or fails a
	// write.
	ErrTransfer = errors.New("destination store write failed")
)

// DestinationKey is the public name a representation's bytes are stored
// under: the url-safe unpadded base64 of its capability key plus the format
// extension. This is the only place the random key becomes externally
// visible; the name deliberately carries no trace of the content hash.
func DestinationKey(rep *imageset.Representation) string {
	return base64.RawURLEncoding.EncodeToString(rep.Key) + rep.ContentType.Extension()
}

// Uploader moves verified media bytes from the content-addressed source store
// to capability-addressed objects in the destination store.
type Uploader struct {
	source *storage.SourceStore
	dest   storage.ObjectStore
}

// NewUploader creates an uploader over the given stores.
func NewUploader(source *storage.SourceStore, dest storage.ObjectStore) *Uploader {
	return &Uploader{
		source: source,
		dest:   dest,
	}
}

// Upload streams one media item: a first pass accumulates MD5, SHA-256 and
// length, and only if the SHA-256 matches the media record does the rewound
// stream go to the destination store. Returns the transferred byte count.
// There are no retries; any failure is fatal to the caller's unit of work.
func (u *Uploader) Upload(ctx context.Context, item links.Item) (int64, error) {
	file, err := u.source.Open(item.SHA256, item.FileType)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	md5Sum := md5.New()
	sha256Sum := sha256.New()
	contentLength, err := io.CopyBuffer(io.MultiWriter(md5Sum, sha256Sum), file, make([]byte, chunkSize))
	if err != nil {
		return 0, fmt.Errorf("failed to read media %d: %w", item.MediaID, err)
	}

	if got := hex.EncodeToString(sha256Sum.Sum(nil)); got != item.SHA256 {
		return 0, fmt.Errorf("%w: got %s, want %s", ErrIntegrity, got, item.SHA256)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind media %d: %w", item.MediaID, err)
	}

	err = u.dest.Put(ctx, storage.PutRequest{
		Key:           DestinationKey(item.Rep),
		Body:          file,
		ContentType:   item.Rep.ContentType.MediaType(),
		ContentLength: contentLength,
		ContentMD5:    base64.StdEncoding.EncodeToString(md5Sum.Sum(nil)),
		CacheControl:  cacheControl,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTransfer, err)
	}

	return contentLength, nil
}
