package poster

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Belphemur/jellyplay/internal/models"
)

func intPtr(v int) *int { return &v }

func episode() models.BaseItem {
	return models.BaseItem{
		ID:                      "ep1",
		Name:                    "Pilot",
		Type:                    models.ItemTypeEpisode,
		SeriesID:                "series1",
		SeriesName:              "The Show",
		ParentIndexNumber:       intPtr(1),
		IndexNumber:             intPtr(2),
		ProductionYear:          2019,
		ImageTags:               map[string]string{"Primary": "ep-tag"},
		SeriesPrimaryImageTag:   "series-tag",
		ParentThumbItemID:       "series1",
		ParentThumbImageTag:     "thumb-tag",
		ParentBackdropItemID:    "series1",
		ParentBackdropImageTags: []string{"bd-tag"},
	}
}

func movie() models.BaseItem {
	return models.BaseItem{
		ID:                "mv1",
		Name:              "The Movie",
		Type:              models.ItemTypeMovie,
		ProductionYear:    2021,
		ImageTags:         map[string]string{"Primary": "mv-tag", "Thumb": "mv-thumb"},
		BackdropImageTags: []string{"mv-bd"},
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		name      string
		item      models.BaseItem
		wantTitle string
		wantSub   string
	}{
		{"episode", episode(), "The Show", "S1:E2 · Pilot"},
		{"movie", movie(), "The Movie", "2021"},
		{"episode without numbers", models.BaseItem{Name: "Special", Type: models.ItemTypeEpisode, SeriesName: "The Show"}, "The Show", "Special"},
		{"movie without year", models.BaseItem{Name: "Untitled", Type: models.ItemTypeMovie}, "Untitled", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, shape := range []Shape{ShapePortrait, ShapeLandscape, ShapeSquare} {
				p := New(tt.item, shape)
				if got := p.DisplayTitle(); got != tt.wantTitle {
					t.Errorf("%s DisplayTitle() = %q, want %q", shape, got, tt.wantTitle)
				}
				if got := p.Subtitle(); got != tt.wantSub {
					t.Errorf("%s Subtitle() = %q, want %q", shape, got, tt.wantSub)
				}
			}
		})
	}
}

func TestEpisodeLabel(t *testing.T) {
	tests := []struct {
		name string
		item models.BaseItem
		want string
	}{
		{"season and episode", models.BaseItem{ParentIndexNumber: intPtr(3), IndexNumber: intPtr(10)}, "S3:E10"},
		{"episode only", models.BaseItem{IndexNumber: intPtr(4)}, "E4"},
		{"none", models.BaseItem{ParentIndexNumber: intPtr(1)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EpisodeLabel(tt.item); got != tt.want {
				t.Errorf("EpisodeLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImageCandidates(t *testing.T) {
	tests := []struct {
		name string
		p    Poster
		want []Image
	}{
		{
			name: "portrait episode prefers series art",
			p:    Portrait{episode()},
			want: []Image{
				{ItemID: "series1", Type: ImagePrimary, Tag: "series-tag"},
				{ItemID: "ep1", Type: ImagePrimary, Tag: "ep-tag"},
			},
		},
		{
			name: "portrait movie",
			p:    Portrait{movie()},
			want: []Image{{ItemID: "mv1", Type: ImagePrimary, Tag: "mv-tag"}},
		},
		{
			name: "landscape episode",
			p:    Landscape{episode()},
			want: []Image{
				{ItemID: "ep1", Type: ImagePrimary, Tag: "ep-tag"},
				{ItemID: "series1", Type: ImageThumb, Tag: "thumb-tag"},
				{ItemID: "series1", Type: ImageBackdrop, Tag: "bd-tag"},
			},
		},
		{
			name: "landscape movie",
			p:    Landscape{movie()},
			want: []Image{
				{ItemID: "mv1", Type: ImageThumb, Tag: "mv-thumb"},
				{ItemID: "mv1", Type: ImageBackdrop, Tag: "mv-bd"},
			},
		},
		{
			name: "square episode",
			p:    Square{episode()},
			want: []Image{
				{ItemID: "ep1", Type: ImagePrimary, Tag: "ep-tag"},
				{ItemID: "series1", Type: ImagePrimary, Tag: "series-tag"},
			},
		},
		{
			name: "no artwork",
			p:    Portrait{models.BaseItem{ID: "x"}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.p.ImageCandidates()); diff != "" {
				t.Errorf("ImageCandidates() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestURLs(t *testing.T) {
	got := URLs(Landscape{episode()}, "http://jf.local/", 400)
	want := []string{
		"http://jf.local/Items/ep1/Images/Primary?maxWidth=400&quality=90&tag=ep-tag",
		"http://jf.local/Items/series1/Images/Thumb?maxWidth=400&quality=90&tag=thumb-tag",
		"http://jf.local/Items/series1/Images/Backdrop/0?maxWidth=400&quality=90&tag=bd-tag",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("URLs() mismatch (-want +got):\n%s", diff)
	}
}

func TestURLs_NoWidth(t *testing.T) {
	got := FirstURL(Portrait{movie()}, "http://jf.local", 0)
	want := "http://jf.local/Items/mv1/Images/Primary?quality=90&tag=mv-tag"
	if got != want {
		t.Errorf("FirstURL() = %q, want %q", got, want)
	}
}

func TestFirstURL_NoArtwork(t *testing.T) {
	if got := FirstURL(Square{models.BaseItem{ID: "x"}}, "http://jf.local", 100); got != "" {
		t.Errorf("FirstURL() = %q, want empty", got)
	}
}

func TestNew_UnknownShapeIsPortrait(t *testing.T) {
	if _, ok := New(movie(), Shape("round")).(Portrait); !ok {
		t.Error("Expected unknown shapes to fall back to Portrait")
	}
}
