package imageset

import (
	"errors"
	"fmt"
)

// ContentType identifies the format a static image is stored in. The ordinal
// is written into the serialized descriptor, so existing values must never be
// renumbered; new formats get new ordinals.
type ContentType byte

const (
	PNG ContentType = iota + 1
	JPEG
	GIFStatic
	WEBPStatic // no lossiness distinction in the upstream media table
)

// ErrUnsupportedFormat is returned when a media file_type does not map to a
// static image content type.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var (
	mediaTypes = [...]string{"image/png", "image/jpeg", "image/gif", "image/webp"}
	extensions = [...]string{".png", ".jpg", ".gif", ".webp"}
)

// contentTypesByFileType maps a media file_type representing a static image
// to its ContentType.
var contentTypesByFileType = map[string]ContentType{
	"gif":  GIFStatic,
	"jpg":  JPEG,
	"png":  PNG,
	"webp": WEBPStatic,
}

// ContentTypeForFileType resolves a media file_type string. Anything outside
// the static image set is an error.
func ContentTypeForFileType(fileType string) (ContentType, error) {
	ct, ok := contentTypesByFileType[fileType]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, fileType)
	}
	return ct, nil
}

// Serialize returns the one-byte wire code of the content type.
func (ct ContentType) Serialize() byte {
	return byte(ct)
}

// MediaType returns the canonical media type, e.g. "image/jpeg".
func (ct ContentType) MediaType() string {
	return mediaTypes[ct-1]
}

// Extension returns the file extension, including the leading dot.
func (ct ContentType) Extension() string {
	return extensions[ct-1]
}
