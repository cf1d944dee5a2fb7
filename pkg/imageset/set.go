package imageset

// Inclusion mask bits, LSB first. Bits 3 and 4 are reserved for lossless-webp
// variants of original and cover; they are always zero today and any future
// use must be additive to stay readable by existing decoders.
const (
	maskCoverDistinct              = 1 << 0
	maskThumbnailGeneratedDistinct = 1 << 1
	maskThumbnailCustomPresent     = 1 << 2
	maskThumbnailGeneratedWEBP     = 1 << 5
)

// RepresentationSet composes the representations (crops/resizes) of a static
// image into the five descriptor slots.
//
//   - Cover falls back on Original.
//   - ThumbnailCustom is optional with no fallback.
//   - ThumbnailGenerated falls back on the resolved Cover.
//   - ThumbnailGeneratedWEBP is optional; consumers of the descriptor apply
//     their own fallback to ThumbnailGenerated, outside this encoding.
//
// Fallbacks share the pointer, not a copy: a defaulted slot is the same
// Representation as the slot it fell back to, which is what keeps it out of
// the serialized form.
type RepresentationSet struct {
	Original               *Representation
	Cover                  *Representation
	ThumbnailCustom        *Representation
	ThumbnailGenerated     *Representation
	ThumbnailGeneratedWEBP *Representation
}

// NewRepresentationSet resolves slot fallbacks and builds an immutable set.
// Cover resolves before ThumbnailGenerated: the latter's fallback is whatever
// Cover ended up being.
func NewRepresentationSet(original, cover, thumbnailCustom, thumbnailGenerated, thumbnailGeneratedWEBP *Representation) *RepresentationSet {
	if cover == nil {
		cover = original
	}
	if thumbnailGenerated == nil {
		thumbnailGenerated = cover
	}

	return &RepresentationSet{
		Original:               original,
		Cover:                  cover,
		ThumbnailCustom:        thumbnailCustom,
		ThumbnailGenerated:     thumbnailGenerated,
		ThumbnailGeneratedWEBP: thumbnailGeneratedWEBP,
	}
}

// MarshalBinary encodes the set: one mask byte declaring which optional slots
// follow, Original's fixed-size record unconditionally, then the record of
// each included slot in mask-bit order. Between 22 and 106 bytes. The layout
// is the durable external contract; a separate consumer decodes it.
func (s *RepresentationSet) MarshalBinary() ([]byte, error) {
	if s.Original == nil {
		return nil, &ValidationError{Field: "original", Value: nil}
	}

	var mask byte
	if s.Cover != s.Original {
		mask |= maskCoverDistinct
	}
	if s.ThumbnailGenerated != s.Cover {
		mask |= maskThumbnailGeneratedDistinct
	}
	if s.ThumbnailCustom != nil {
		mask |= maskThumbnailCustomPresent
	}
	if s.ThumbnailGeneratedWEBP != nil {
		mask |= maskThumbnailGeneratedWEBP
	}

	buf := make([]byte, 0, 1+5*RepresentationSize)
	buf = append(buf, mask)
	buf = s.Original.AppendBinary(buf)

	if s.Cover != s.Original {
		buf = s.Cover.AppendBinary(buf)
	}
	if s.ThumbnailGenerated != s.Cover {
		buf = s.ThumbnailGenerated.AppendBinary(buf)
	}
	if s.ThumbnailCustom != nil {
		buf = s.ThumbnailCustom.AppendBinary(buf)
	}
	if s.ThumbnailGeneratedWEBP != nil {
		buf = s.ThumbnailGeneratedWEBP.AppendBinary(buf)
	}

	return buf, nil
}
