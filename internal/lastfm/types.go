package lastfm

// Tag is a Last.fm folksonomy tag with its popularity weight.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"` // absent from artist.getTopTags
}

// topTagsResponse is shared by track.getTopTags and artist.getTopTags.
type topTagsResponse struct {
	TopTags struct {
		Tag []Tag `json:"tag"`
	} `json:"toptags"`
}

// apiError represents a Last.fm API error response.
type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}
