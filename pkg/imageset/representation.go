package imageset

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

const (
	// KeyLength is the size of a capability key in bytes.
	KeyLength = 16

	// RepresentationSize is the fixed serialized size of one representation:
	// [content type: 1][capability key: 16][width: 2][height: 2].
	RepresentationSize = 1 + KeyLength + 2 + 2

	// MaxDimension leaves two bits of headroom in the 16-bit width and height
	// fields.
	MaxDimension = 16383
)

// ValidationError reports a representation field that failed validation.
type ValidationError struct {
	Field string
	Value interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid representation %s: %v", e.Field, e.Value)
}

// Representation is one stored variant of an image: its format, the random
// capability key it is published under, and its pixel dimensions.
//
// Representations are immutable once constructed and are always handled by
// pointer. Pointer identity is the slot-sharing relation: RepresentationSet
// serializes a slot only when it does not point at the same Representation as
// the slot it falls back to.
type Representation struct {
	ContentType ContentType
	Key         []byte
	Width       int
	Height      int
}

// NewRepresentation validates and constructs a representation. No partial
// objects: any violation returns a *ValidationError naming the field.
func NewRepresentation(contentType ContentType, key []byte, width, height int) (*Representation, error) {
	if width < 1 || width > MaxDimension {
		return nil, &ValidationError{Field: "width", Value: width}
	}
	if height < 1 || height > MaxDimension {
		return nil, &ValidationError{Field: "height", Value: height}
	}
	if len(key) != KeyLength {
		return nil, &ValidationError{Field: "key", Value: fmt.Sprintf("%x", key)}
	}

	return &Representation{
		ContentType: contentType,
		Key:         append([]byte(nil), key...),
		Width:       width,
		Height:      height,
	}, nil
}

// RandomKey returns a fresh capability key from a cryptographically secure
// source. Keys are drawn per representation, never derived from content:
// byte-identical images still get independent, unguessable names, so a key
// can be invalidated later without touching its siblings.
func RandomKey() ([]byte, error) {
	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate capability key: %w", err)
	}
	return key, nil
}

// AppendBinary appends the fixed-size wire form of the representation:
// content type ordinal, capability key, then width and height as big-endian
// 16-bit values. No padding, no length prefix; framing is the set's job.
func (r *Representation) AppendBinary(buf []byte) []byte {
	buf = append(buf, r.ContentType.Serialize())
	buf = append(buf, r.Key...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(r.Width))
	buf = binary.BigEndian.AppendUint16(buf, uint16(r.Height))
	return buf
}
