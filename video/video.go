// Package video defines the domain models shared by discovery, providers and the resolution pipeline.
package video

import (
	"fmt"
	"time"
)

// Identity is the canonical video identity used for every provider call of a single resolution.
type Identity struct {
	// ID is the 11 character platform identifier.
	ID string `json:"id"`
	// Title of the video.
	Title string `json:"title"`
	// Author is the channel name.
	Author string `json:"author"`
	// Thumbnail URL.
	Thumbnail string `json:"thumbnail"`
	// URL is the canonical watch URL.
	URL string `json:"url"`
}

// String returns the title or the id for display.
func (i *Identity) String() string {
	if i.Title != "" {
		return i.Title
	}
	return i.ID
}

// Merge overlays the non-empty fields of other on top of i and returns the result.
func (i Identity) Merge(other Identity) Identity {
	if other.ID != "" {
		i.ID = other.ID
	}
	if other.Title != "" {
		i.Title = other.Title
	}
	if other.Author != "" {
		i.Author = other.Author
	}
	if other.Thumbnail != "" {
		i.Thumbnail = other.Thumbnail
	}
	if other.URL != "" {
		i.URL = other.URL
	}
	if i.URL == "" && i.ID != "" {
		i.URL = WatchURL(i.ID)
	}
	return i
}

// Hit is a single ranked discovery result.
type Hit struct {
	Identity
	Duration time.Duration `json:"duration"`
	Views    int64         `json:"views"`
}

// Result is the terminal artifact of one resolution: a locator, never the media itself.
type Result struct {
	Format  string `json:"format"`
	Quality string `json:"quality"`
	Link    string `json:"link"`
	Size    string `json:"size"`
	Label   string `json:"label"`
}

// WatchURL builds the canonical watch URL for an id.
func WatchURL(id string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", id)
}

// ThumbnailURL builds the default thumbnail URL for an id.
func ThumbnailURL(id string) string {
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/0.jpg", id)
}
