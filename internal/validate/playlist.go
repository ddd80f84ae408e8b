package validate

import "strings"

// PlaylistTags are the curated-section classifications a playlist may carry;
// the home page selects its sections by tag.
var PlaylistTags = []string{
	"top-picks",
	"trending",
	"new-releases",
	"classics",
	"staff-favorites",
}

func IsPlaylistTag(tag string) bool {
	for _, t := range PlaylistTags {
		if t == tag {
			return true
		}
	}
	return false
}

type PlaylistInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tag         string   `json:"tag"`
	VideoIDs    []string `json:"videoIds"`
}

func Playlist(in PlaylistInput) (PlaylistInput, Fields) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	fields := Fields{}
	if in.Title == "" {
		fields.add("title", "title is required")
	}
	fields.add("title", checkLen(in.Title, MaxTitleLength, "title"))
	if in.Description == "" {
		fields.add("description", "description is required")
	}
	fields.add("description", checkLen(in.Description, MaxDescriptionLength, "description"))
	if !IsPlaylistTag(in.Tag) {
		fields.add("tag", "tag must be one of: "+strings.Join(PlaylistTags, ", "))
	}
	if len(in.VideoIDs) == 0 {
		fields.add("videoIds", "playlist needs at least one video")
	}
	return in, fields
}
