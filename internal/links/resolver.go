package links

import (
	"errors"
	"fmt"

	"github.com/tendant/simple-media-migrate/pkg/imageset"
)

// Role is the purpose a media link serves within a submission.
type Role string

const (
	RoleSubmission             Role = "submission"
	RoleCover                  Role = "cover"
	RoleThumbnailCustom        Role = "thumbnail-custom"
	RoleThumbnailGenerated     Role = "thumbnail-generated"
	RoleThumbnailGeneratedWEBP Role = "thumbnail-generated-webp"
)

// requiredByRole declares the full role matrix in one place: every role the
// migrator understands, with true marking the ones that must be present.
// Links with roles outside this table are ignored, so new link types can
// appear upstream before this code learns about them.
var requiredByRole = map[Role]bool{
	RoleSubmission:             true,
	RoleCover:                  true,
	RoleThumbnailGenerated:     true,
	RoleThumbnailCustom:        false,
	RoleThumbnailGeneratedWEBP: false,
}

// roleOrder fixes the resolution order so distinct media items are
// discovered, and later uploaded, deterministically.
var roleOrder = []Role{
	RoleSubmission,
	RoleCover,
	RoleThumbnailCustom,
	RoleThumbnailGenerated,
	RoleThumbnailGeneratedWEBP,
}

var (
	// ErrDuplicateRole is returned when two links carry the same role;
	// upstream data is assumed role-unique.
	ErrDuplicateRole = errors.New("duplicate media link role")

	// ErrMissingLink is returned when a required role has no link.
	ErrMissingLink = errors.New("required media link missing")
)

// Attributes carries the pre-computed pixel dimensions of a media item. The
// migrator never decodes pixel data; these come from the media table.
type Attributes struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Link is one media link row: a role tag on a media item. Field tags match
// the jsonb aggregate the repository builds from submission_media_links.
type Link struct {
	Role       Role       `json:"link_type"`
	MediaID    int64      `json:"mediaid"`
	SHA256     string     `json:"sha256"`
	FileType   string     `json:"file_type"`
	Attributes Attributes `json:"attributes"`
}

// Item is one distinct media item together with the representation its bytes
// migrate to.
type Item struct {
	MediaID  int64
	SHA256   string
	FileType string
	Rep      *imageset.Representation
}

// Resolution is the resolver's output: the composed set and the distinct
// media items that back it, in discovery order.
type Resolution struct {
	Set   *imageset.RepresentationSet
	Items []Item
}

// Resolve turns a submission's link rows into a representation set plus the
// distinct media items to transfer. Roles that reference the same media item
// resolve to the same *Representation; that shared identity is what keeps
// duplicate slots out of the serialized descriptor.
func Resolve(rows []Link) (*Resolution, error) {
	byRole := make(map[Role]Link, len(rows))
	for _, link := range rows {
		if _, ok := byRole[link.Role]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRole, link.Role)
		}
		byRole[link.Role] = link
	}

	// One representation per distinct media item, keyed and typed once.
	repByMedia := make(map[int64]*imageset.Representation)
	var items []Item
	for _, role := range roleOrder {
		link, ok := byRole[role]
		if !ok {
			continue
		}
		if _, ok := repByMedia[link.MediaID]; ok {
			continue
		}

		contentType, err := imageset.ContentTypeForFileType(link.FileType)
		if err != nil {
			return nil, fmt.Errorf("media %d: %w", link.MediaID, err)
		}
		key, err := imageset.RandomKey()
		if err != nil {
			return nil, err
		}
		rep, err := imageset.NewRepresentation(contentType, key, link.Attributes.Width, link.Attributes.Height)
		if err != nil {
			return nil, fmt.Errorf("media %d: %w", link.MediaID, err)
		}

		repByMedia[link.MediaID] = rep
		items = append(items, Item{
			MediaID:  link.MediaID,
			SHA256:   link.SHA256,
			FileType: link.FileType,
			Rep:      rep,
		})
	}

	repForRole := func(role Role) (*imageset.Representation, error) {
		link, ok := byRole[role]
		if !ok {
			if requiredByRole[role] {
				return nil, fmt.Errorf("%w: %q", ErrMissingLink, role)
			}
			return nil, nil
		}
		return repByMedia[link.MediaID], nil
	}

	original, err := repForRole(RoleSubmission)
	if err != nil {
		return nil, err
	}
	cover, err := repForRole(RoleCover)
	if err != nil {
		return nil, err
	}
	thumbnailCustom, err := repForRole(RoleThumbnailCustom)
	if err != nil {
		return nil, err
	}
	thumbnailGenerated, err := repForRole(RoleThumbnailGenerated)
	if err != nil {
		return nil, err
	}
	thumbnailGeneratedWEBP, err := repForRole(RoleThumbnailGeneratedWEBP)
	if err != nil {
		return nil, err
	}

	// Cover and thumbnail-generated are required above, so the set's own
	// fallback logic only fires if the role matrix ever relaxes.
	set := imageset.NewRepresentationSet(original, cover, thumbnailCustom, thumbnailGenerated, thumbnailGeneratedWEBP)

	return &Resolution{Set: set, Items: items}, nil
}
