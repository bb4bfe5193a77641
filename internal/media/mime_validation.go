package media

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/angelmondragon/homeplate-backend/pkg/enums"
)

type mimeGroup string

const mimeGroupImages mimeGroup = "images"

var mimeGroupNames = map[mimeGroup]string{
	mimeGroupImages: "PNG, JPEG, WebP or GIF images",
}

var mimeGroupTypes = map[mimeGroup][]string{
	mimeGroupImages: {"image/png", "image/jpeg", "image/webp", "image/gif"},
}

var allowedMimeGroupsByKind = map[enums.MediaKind][]mimeGroup{
	enums.MediaKindDish:        {mimeGroupImages},
	enums.MediaKindVendorLogo:  {mimeGroupImages},
	enums.MediaKindVendorCover: {mimeGroupImages},
	enums.MediaKindProfile:     {mimeGroupImages},
}

var mimeTypesByKind = buildMimeTypesByKind()

func buildMimeTypesByKind() map[enums.MediaKind][]string {
	result := make(map[enums.MediaKind][]string, len(allowedMimeGroupsByKind))
	for kind, groups := range allowedMimeGroupsByKind {
		set := make(map[string]struct{})
		for _, group := range groups {
			for _, value := range mimeGroupTypes[group] {
				set[value] = struct{}{}
			}
		}
		list := make([]string, 0, len(set))
		for value := range set {
			list = append(list, value)
		}
		sort.Strings(list)
		result[kind] = list
	}
	return result
}

// sniffMimeType detects the content type from the file bytes. Client supplied types are not trusted.
func sniffMimeType(data []byte) (*mimetype.MIME, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	detected := mimetype.Detect(data)
	if detected == nil {
		return nil, fmt.Errorf("mime type undetectable")
	}
	return detected, nil
}

func isAllowedMime(kind enums.MediaKind, detected *mimetype.MIME) bool {
	if detected == nil {
		return false
	}
	for _, candidate := range mimeTypesByKind[kind] {
		if detected.Is(candidate) {
			return true
		}
	}
	return false
}

func allowedMimeDescription(kind enums.MediaKind) string {
	groups := allowedMimeGroupsByKind[kind]
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, mimeGroupNames[g])
	}
	if len(names) == 0 {
		return "the approved mime types"
	}
	return strings.Join(names, " or ")
}
