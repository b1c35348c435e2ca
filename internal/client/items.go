package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Belphemur/jellyplay/internal/apperrors"
	"github.com/Belphemur/jellyplay/internal/config"
	"github.com/Belphemur/jellyplay/internal/models"
)

// GetItem returns the full item, from the item cache when present.
func (c *client) GetItem(ctx context.Context, itemID string) (*models.BaseItem, error) {
	logger := config.GetLogger()

	if c.items != nil {
		if item, ok := c.items.Get(itemID); ok {
			logger.Debug().Str("itemID", itemID).Msg("Item served from cache")
			return &item, nil
		}
	}

	var item models.BaseItem
	path := "/Items/" + url.PathEscape(itemID)
	if err := c.do(ctx, "item", http.MethodGet, path, c.userQuery(), nil, &item); err != nil {
		return nil, asNotFound(err, "item", itemID)
	}
	if item.ID == "" {
		return nil, apperrors.NewItemNotFoundError(itemID)
	}

	if c.items != nil {
		c.items.Set(itemID, item)
	}
	logger.Info().Str("itemID", itemID).Str("type", item.Type).Str("name", item.Name).Msg("Fetched item")
	return &item, nil
}

// GetAdjacentEpisodes asks the series for the episodes around itemID. The
// server answers with the previous, current and next episode when they exist.
func (c *client) GetAdjacentEpisodes(ctx context.Context, seriesID, itemID string) ([]models.BaseItem, error) {
	q := c.userQuery()
	q.Set("adjacentTo", itemID)
	q.Set("limit", "3")
	q.Set("fields", "Chapters,MediaSources")

	var result models.ItemsResult
	path := fmt.Sprintf("/Shows/%s/Episodes", url.PathEscape(seriesID))
	if err := c.do(ctx, "episodes", http.MethodGet, path, q, nil, &result); err != nil {
		return nil, asNotFound(err, "series", seriesID)
	}

	logger := config.GetLogger()
	logger.Debug().Str("seriesID", seriesID).Str("itemID", itemID).Int("count", len(result.Items)).Msg("Fetched adjacent episodes")
	return result.Items, nil
}

// GetPlaybackInfo negotiates playback of itemID. Answers are never cached:
// every call opens a new play session.
func (c *client) GetPlaybackInfo(ctx context.Context, itemID string, req models.PlaybackInfoRequest) (*models.PlaybackInfoResponse, error) {
	if req.UserID == "" {
		req.UserID = c.userID
	}

	var info models.PlaybackInfoResponse
	path := fmt.Sprintf("/Items/%s/PlaybackInfo", url.PathEscape(itemID))
	if err := c.do(ctx, "playback_info", http.MethodPost, path, c.userQuery(), req, &info); err != nil {
		return nil, asNotFound(err, "item", itemID)
	}

	logger := config.GetLogger()
	logger.Info().
		Str("itemID", itemID).
		Str("playSessionID", info.PlaySessionID).
		Int("mediaSources", len(info.MediaSources)).
		Str("errorCode", info.ErrorCode).
		Msg("Negotiated playback")
	return &info, nil
}
