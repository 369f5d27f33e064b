package subsonic

// Artist is one entry of the artist index or an artist detail response.
type Artist struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Albums []Album `json:"album,omitempty"`
}

// Album carries album metadata and, for getAlbum, its songs.
type Album struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	ArtistID string `json:"artistId"`
	Songs    []Song `json:"song,omitempty"`
}

// Song is a single track on an album.
type Song struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Album  string `json:"album"`
	Artist string `json:"artist"`
}

type indexEntry struct {
	Name    string   `json:"name"`
	Artists []Artist `json:"artist"`
}

type artistsIndex struct {
	Index []indexEntry `json:"index"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type payload struct {
	Status  string        `json:"status"`
	Version string        `json:"version"`
	Error   *apiError     `json:"error,omitempty"`
	Artists *artistsIndex `json:"artists,omitempty"`
	Artist  *Artist       `json:"artist,omitempty"`
	Album   *Album        `json:"album,omitempty"`
}

type envelope struct {
	Response *payload `json:"subsonic-response"`
}
