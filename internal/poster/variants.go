package poster

import "github.com/Belphemur/jellyplay/internal/models"

// Portrait is the 2:3 card: series art for episodes, the item's own primary image otherwise.
type Portrait struct{ Item models.BaseItem }

func (p Portrait) DisplayTitle() string { return displayTitle(p.Item) }
func (p Portrait) Subtitle() string     { return subtitle(p.Item) }

func (p Portrait) ImageCandidates() []Image {
	var images []Image
	if p.Item.Type == models.ItemTypeEpisode && p.Item.SeriesID != "" && p.Item.SeriesPrimaryImageTag != "" {
		images = append(images, Image{ItemID: p.Item.SeriesID, Type: ImagePrimary, Tag: p.Item.SeriesPrimaryImageTag})
	}
	if img, ok := primary(p.Item); ok {
		images = append(images, img)
	}
	return images
}

// Landscape is the 16:9 card: episode stills, then thumbs and backdrops.
type Landscape struct{ Item models.BaseItem }

func (l Landscape) DisplayTitle() string { return displayTitle(l.Item) }
func (l Landscape) Subtitle() string     { return subtitle(l.Item) }

func (l Landscape) ImageCandidates() []Image {
	item := l.Item
	var images []Image

	if item.Type == models.ItemTypeEpisode {
		if img, ok := primary(item); ok {
			images = append(images, img)
		}
	}
	if tag, ok := item.ImageTags[string(ImageThumb)]; ok {
		images = append(images, Image{ItemID: item.ID, Type: ImageThumb, Tag: tag})
	}
	if item.ParentThumbItemID != "" && item.ParentThumbImageTag != "" {
		images = append(images, Image{ItemID: item.ParentThumbItemID, Type: ImageThumb, Tag: item.ParentThumbImageTag})
	}
	if len(item.BackdropImageTags) > 0 {
		images = append(images, Image{ItemID: item.ID, Type: ImageBackdrop, Tag: item.BackdropImageTags[0]})
	}
	if item.ParentBackdropItemID != "" && len(item.ParentBackdropImageTags) > 0 {
		images = append(images, Image{ItemID: item.ParentBackdropItemID, Type: ImageBackdrop, Tag: item.ParentBackdropImageTags[0]})
	}
	return images
}

// Square is the 1:1 card used for music and channels.
type Square struct{ Item models.BaseItem }

func (s Square) DisplayTitle() string { return displayTitle(s.Item) }
func (s Square) Subtitle() string     { return subtitle(s.Item) }

func (s Square) ImageCandidates() []Image {
	var images []Image
	if img, ok := primary(s.Item); ok {
		images = append(images, img)
	}
	if s.Item.SeriesID != "" && s.Item.SeriesPrimaryImageTag != "" {
		images = append(images, Image{ItemID: s.Item.SeriesID, Type: ImagePrimary, Tag: s.Item.SeriesPrimaryImageTag})
	}
	return images
}
