package catalog

import (
	"encoding/json"
	"strings"
)

// PhotoSlots is the number of photos every product must carry.
const PhotoSlots = 2

// PhotoFieldKind tags the shape a stored photo field was found in.
type PhotoFieldKind int

const (
	PhotoAbsent PhotoFieldKind = iota
	PhotoArray
	PhotoLegacyString
)

func (k PhotoFieldKind) String() string {
	switch k {
	case PhotoArray:
		return "array"
	case PhotoLegacyString:
		return "legacy_string"
	default:
		return "absent"
	}
}

// PhotoField is the parsed form of the url_foto column.
type PhotoField struct {
	Kind PhotoFieldKind
	URLs []string
}

// ParsePhotoField accepts a JSON array of URLs or a single bare URL. Anything
// else, including JSON that is not an array, parses as absent. Empty and
// non-string array entries are dropped and at most PhotoSlots URLs are kept.
func ParsePhotoField(raw string) PhotoField {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return PhotoField{Kind: PhotoAbsent}
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
		items, ok := decoded.([]any)
		if !ok {
			return PhotoField{Kind: PhotoAbsent}
		}
		urls := make([]string, 0, PhotoSlots)
		for _, item := range items {
			if s, ok := item.(string); ok && s != "" {
				urls = append(urls, s)
			}
			if len(urls) == PhotoSlots {
				break
			}
		}
		return PhotoField{Kind: PhotoArray, URLs: urls}
	}

	if strings.HasPrefix(trimmed, "http") {
		return PhotoField{Kind: PhotoLegacyString, URLs: []string{trimmed}}
	}
	return PhotoField{Kind: PhotoAbsent}
}

// EncodePhotoField always writes the JSON array form.
func EncodePhotoField(urls []string) string {
	if urls == nil {
		urls = []string{}
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return "[]"
	}
	return string(b)
}
