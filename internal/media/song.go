package media

import "fmt"

const watchURL = "https://www.youtube.com/watch?v=%s"

type Song struct {
	Name       string `json:"name"`
	ArtistName string `json:"artist_name"`
	URL        string `json:"url"`
	Thumbnail  string `json:"thumbnail"`
	Duration   int    `json:"duration"`
}

type StreamInfo struct {
	StreamURL string `json:"stream_url"`
}

// Entry is the subset of a yt-dlp video entry the service reads.
type Entry struct {
	ID         string      `json:"id"`
	Title      *string     `json:"title"`
	Uploader   *string     `json:"uploader"`
	Channel    *string     `json:"channel"`
	Duration   *float64    `json:"duration"`
	Thumbnail  string      `json:"thumbnail"`
	Thumbnails []Thumbnail `json:"thumbnails"`
}

type Thumbnail struct {
	URL string `json:"url"`
}

type searchResult struct {
	Entries []*Entry `json:"entries"`
}

type Format struct {
	URL    string `json:"url"`
	ACodec string `json:"acodec"`
	VCodec string `json:"vcodec"`
}

type VideoInfo struct {
	URL     string   `json:"url"`
	Formats []Format `json:"formats"`
}

// ParseEntries maps raw entries to songs, skipping nil entries.
func ParseEntries(entries []*Entry) []Song {
	songs := make([]Song, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		song := Song{
			Name:       valueOr(e.Title, "N/A"),
			ArtistName: valueOr(e.Uploader, valueOr(e.Channel, "N/A")),
			URL:        fmt.Sprintf(watchURL, e.ID),
			Thumbnail:  e.Thumbnail,
		}
		// flat entries only carry the thumbnails list; the last one is the largest
		if song.Thumbnail == "" && len(e.Thumbnails) > 0 {
			song.Thumbnail = e.Thumbnails[len(e.Thumbnails)-1].URL
		}
		if e.Duration != nil {
			song.Duration = int(*e.Duration)
		}
		songs = append(songs, song)
	}
	return songs
}

// ParseStreamURL prefers the URL of the selected format, then the first audio-only format.
func ParseStreamURL(info *VideoInfo) string {
	if info == nil {
		return ""
	}
	if info.URL != "" {
		return info.URL
	}
	for _, f := range info.Formats {
		if f.ACodec != "none" && f.VCodec == "none" {
			return f.URL
		}
	}
	return ""
}

func valueOr(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}
