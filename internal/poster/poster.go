// Package poster describes the artwork and labels of items shown next to a
// playback session.
//
// Poster is a small capability interface. The shared behavior lives in free
// functions taking a Poster, so variants only describe their candidates.
package poster

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Belphemur/jellyplay/internal/models"
)

// ImageType is a server image slot.
type ImageType string

const (
	ImagePrimary  ImageType = "Primary"
	ImageBackdrop ImageType = "Backdrop"
	ImageThumb    ImageType = "Thumb"
)

// Image points at one image of one item.
type Image struct {
	ItemID string
	Type   ImageType
	Tag    string
	// Index selects among backdrops. Other image types ignore it.
	Index int
}

// Poster is anything that can be displayed as a card.
type Poster interface {
	DisplayTitle() string
	Subtitle() string
	// ImageCandidates lists images to try, best first.
	ImageCandidates() []Image
}

// Shape is the aspect of a card.
type Shape string

const (
	ShapePortrait  Shape = "portrait"
	ShapeLandscape Shape = "landscape"
	ShapeSquare    Shape = "square"
)

// New returns the Poster variant of item for a card shape. Unknown shapes fall back to portrait.
func New(item models.BaseItem, shape Shape) Poster {
	switch shape {
	case ShapeLandscape:
		return Landscape{item}
	case ShapeSquare:
		return Square{item}
	default:
		return Portrait{item}
	}
}

// URLs renders the candidates of p as image URLs, best first. maxWidth of
// zero or less leaves the size to the server.
func URLs(p Poster, baseURL string, maxWidth int) []string {
	base := strings.TrimRight(baseURL, "/")
	candidates := p.ImageCandidates()
	urls := make([]string, 0, len(candidates))
	for _, img := range candidates {
		urls = append(urls, imageURL(base, img, maxWidth))
	}
	return urls
}

// FirstURL returns the best image URL of p, or "" when it has no artwork.
func FirstURL(p Poster, baseURL string, maxWidth int) string {
	if urls := URLs(p, baseURL, maxWidth); len(urls) > 0 {
		return urls[0]
	}
	return ""
}

func imageURL(base string, img Image, maxWidth int) string {
	path := fmt.Sprintf("%s/Items/%s/Images/%s", base, url.PathEscape(img.ItemID), img.Type)
	if img.Type == ImageBackdrop {
		path += "/" + strconv.Itoa(img.Index)
	}

	q := url.Values{}
	q.Set("quality", "90")
	if maxWidth > 0 {
		q.Set("maxWidth", strconv.Itoa(maxWidth))
	}
	if img.Tag != "" {
		q.Set("tag", img.Tag)
	}
	return path + "?" + q.Encode()
}

// displayTitle is the title shared by all variants: episodes are labelled by their series.
func displayTitle(item models.BaseItem) string {
	if item.Type == models.ItemTypeEpisode && item.SeriesName != "" {
		return item.SeriesName
	}
	return item.Name
}

// subtitle labels episodes with their position and name, other items with their year.
func subtitle(item models.BaseItem) string {
	if item.Type == models.ItemTypeEpisode {
		if label := EpisodeLabel(item); label != "" {
			return label + " · " + item.Name
		}
		return item.Name
	}
	if item.ProductionYear > 0 {
		return strconv.Itoa(item.ProductionYear)
	}
	return ""
}

// EpisodeLabel formats the season and episode numbers as "S1:E4". It is
// empty when the item carries no episode number.
func EpisodeLabel(item models.BaseItem) string {
	if item.IndexNumber == nil {
		return ""
	}
	if item.ParentIndexNumber == nil {
		return fmt.Sprintf("E%d", *item.IndexNumber)
	}
	return fmt.Sprintf("S%d:E%d", *item.ParentIndexNumber, *item.IndexNumber)
}

func primary(item models.BaseItem) (Image, bool) {
	tag, ok := item.ImageTags[string(ImagePrimary)]
	return Image{ItemID: item.ID, Type: ImagePrimary, Tag: tag}, ok
}
