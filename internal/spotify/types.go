// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package spotify

import "github.com/desertthunder/tunecard/internal/models"

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Artist represents a Spotify artist.
type Artist struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	Name   string  `json:"name"`
	Images []Image `json:"images"`
	URI    string  `json:"uri"`
}

// Show represents a podcast show (episodes only).
type Show struct {
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// Item represents a playable item: a track, or an episode when the player
// reports additional types. Episodes carry their artwork on the item itself
// rather than on an album.
type Item struct {
	Name    string   `json:"name"`
	Artists []Artist `json:"artists"`
	Album   Album    `json:"album"`
	Images  []Image  `json:"images"`
	Show    Show     `json:"show"`
	URI     string   `json:"uri"`
}

// NowPlayingResponse represents the player's currently-playing state.
type NowPlayingResponse struct {
	IsPlaying            bool   `json:"is_playing"`
	CurrentlyPlayingType string `json:"currently_playing_type"`
	Item                 *Item  `json:"item"`
}

// PlayedItem represents one entry of the recently-played history.
type PlayedItem struct {
	Track    Item   `json:"track"`
	PlayedAt string `json:"played_at"`
}

// RecentlyPlayedResponse represents a page of recently-played history.
type RecentlyPlayedResponse struct {
	Items []PlayedItem `json:"items"`
}

// ToTrack converts an API item into the badge-facing track view.
//
// The cover URL is the second-largest artwork variant, falling back to the
// largest when the upstream list is short.
func (i *Item) ToTrack(playingType string) models.Track {
	if playingType == "" {
		playingType = models.PlayingTypeTrack
	}

	track := models.Track{
		SongName:    i.Name,
		URI:         i.URI,
		PlayingType: playingType,
	}

	if len(i.Artists) > 0 {
		track.ArtistName = i.Artists[0].Name
	} else if i.Show.Name != "" {
		track.ArtistName = i.Show.Name
	}

	images := i.Album.Images
	if playingType == models.PlayingTypeEpisode && len(i.Images) > 0 {
		images = i.Images
	}
	track.CoverImageURL = secondLargest(images)

	return track
}

func secondLargest(images []Image) string {
	switch {
	case len(images) > 1:
		return images[1].URL
	case len(images) == 1:
		return images[0].URL
	default:
		return ""
	}
}
