package validate

import "strings"

// ThumbnailRef is either a staged upload or the URL of an already-uploaded
// image. Exactly one side must be set.
type ThumbnailRef struct {
	URL    string   `json:"url,omitempty"`
	Upload *FileRef `json:"upload,omitempty"`
}

type FileRef struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

type VideoUploadInput struct {
	Title       string       `json:"title"`
	Genre       string       `json:"genre"`
	VideoURL    string       `json:"videoUrl"`
	TrailerURL  string       `json:"trailerUrl"`
	PrerollURL  string       `json:"prerollUrl"`
	Thumbnail   ThumbnailRef `json:"thumbnail"`
	Duration    string       `json:"duration"`
	Description string       `json:"description"`
	About       string       `json:"about"`
	IsSlideshow bool         `json:"isSlideshow"`
	Tags        []string     `json:"tags,omitempty"`
}

func VideoUpload(in VideoUploadInput) (VideoUploadInput, Fields) {
	in.Title = strings.TrimSpace(in.Title)
	in.Genre = strings.TrimSpace(in.Genre)
	in.Duration = strings.TrimSpace(in.Duration)

	fields := Fields{}
	if in.Title == "" {
		fields.add("title", "title is required")
	}
	fields.add("title", checkLen(in.Title, MaxTitleLength, "title"))
	if in.Genre == "" {
		fields.add("genre", "genre is required")
	}
	fields.add("videoUrl", AbsoluteURL(in.VideoURL, "video URL"))
	fields.add("trailerUrl", AbsoluteURL(in.TrailerURL, "trailer URL"))
	fields.add("prerollUrl", AbsoluteURL(in.PrerollURL, "preroll URL"))
	fields.add("duration", Duration(in.Duration))
	fields.add("description", checkLen(in.Description, MaxDescriptionLength, "description"))

	switch {
	case in.Thumbnail.Upload == nil && in.Thumbnail.URL == "":
		fields.add("thumbnail", "thumbnail is required")
	case in.Thumbnail.Upload != nil && in.Thumbnail.URL != "":
		fields.add("thumbnail", "provide either a thumbnail file or a URL, not both")
	case in.Thumbnail.URL != "":
		fields.add("thumbnail", AbsoluteURL(in.Thumbnail.URL, "thumbnail URL"))
	}
	return in, fields
}

// Comment validates (and trims) a comment body: 1 to MaxCommentLength chars.
func Comment(text string) (string, Fields) {
	text = strings.TrimSpace(text)

	fields := Fields{}
	if text == "" {
		fields.add("text", "comment text is required")
	} else {
		fields.add("text", checkLen(text, MaxCommentLength, "comment"))
	}
	return text, fields
}
