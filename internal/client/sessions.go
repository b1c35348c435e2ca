package client

import (
	"context"
	"net/http"

	"github.com/Belphemur/jellyplay/internal/models"
)

func (c *client) ReportPlaybackStart(ctx context.Context, info models.PlaybackProgressInfo) error {
	return c.do(ctx, "playing", http.MethodPost, "/Sessions/Playing", nil, info, nil)
}

func (c *client) ReportPlaybackProgress(ctx context.Context, info models.PlaybackProgressInfo) error {
	return c.do(ctx, "playing_progress", http.MethodPost, "/Sessions/Playing/Progress", nil, info, nil)
}

// ReportPlaybackStopped also drops the cached item: the server updates its
// resume position on stop.
func (c *client) ReportPlaybackStopped(ctx context.Context, info models.PlaybackStopInfo) error {
	if c.items != nil {
		c.items.Delete(info.ItemID)
	}
	return c.do(ctx, "playing_stopped", http.MethodPost, "/Sessions/Playing/Stopped", nil, info, nil)
}
