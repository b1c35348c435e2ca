package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Belphemur/jellyplay/internal/cache"
	"github.com/Belphemur/jellyplay/internal/config"
	"github.com/Belphemur/jellyplay/internal/models"
)

// Client is the part of the Jellyfin REST API used by the playback core.
type Client interface {
	GetItem(ctx context.Context, itemID string) (*models.BaseItem, error)
	GetPlaybackInfo(ctx context.Context, itemID string, req models.PlaybackInfoRequest) (*models.PlaybackInfoResponse, error)
	// GetAdjacentEpisodes returns up to three episodes of a series centered on itemID.
	GetAdjacentEpisodes(ctx context.Context, seriesID, itemID string) ([]models.BaseItem, error)

	ReportPlaybackStart(ctx context.Context, info models.PlaybackProgressInfo) error
	ReportPlaybackProgress(ctx context.Context, info models.PlaybackProgressInfo) error
	ReportPlaybackStopped(ctx context.Context, info models.PlaybackStopInfo) error

	BaseURL() string
	AccessToken() string
	DeviceID() string
	UserID() string

	// Close releases the item cache.
	Close() error
}

const breakerName = "jellyfin-api"

type client struct {
	httpClient *http.Client
	baseURL    string
	userID     string
	token      string
	deviceID   string
	authHeader string

	breaker *gobreaker.CircuitBreaker[[]byte]

	// itemCache is nil when caching is disabled.
	itemCache cache.Cache
	items     *cache.Typed[models.BaseItem]
}

// NewClient creates a client for the configured server. The item cache is
// built from cfg.Cache; a cache that cannot be created disables caching.
func NewClient(cfg *config.Config) Client {
	logger := config.GetLogger()

	timeout := 30 * time.Second
	if cfg.ClientTimeout != "" {
		if parsed, err := time.ParseDuration(cfg.ClientTimeout); err != nil {
			logger.Warn().Err(err).Str("timeout", cfg.ClientTimeout).Msg("Invalid timeout duration, using default 30s")
		} else {
			timeout = parsed
		}
	}

	baseTransport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	c := &client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: newCompressionTransport(baseTransport),
		},
		baseURL:  strings.TrimRight(cfg.Jellyfin.URL, "/"),
		userID:   cfg.Jellyfin.UserID,
		token:    cfg.Jellyfin.AccessToken,
		deviceID: cfg.Jellyfin.DeviceID,
		breaker:  newBreaker(breakerName),
	}
	c.authHeader = authorizationHeader(
		cfg.Jellyfin.ClientName,
		cfg.Jellyfin.DeviceName,
		cfg.Jellyfin.DeviceID,
		cfg.Jellyfin.ClientVersion,
		cfg.Jellyfin.AccessToken,
	)

	if itemCache, err := newItemCache(cfg); err != nil {
		logger.Warn().Err(err).Str("provider", cfg.Cache.Provider).Msg("Item cache unavailable, continuing without cache")
	} else if itemCache != nil {
		c.itemCache = itemCache
		c.items = cache.NewTyped[models.BaseItem](itemCache, "item:", cache.ZerologLogger{Logger: logger})
	}

	return c
}

func newItemCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.Cache.Size <= 0 {
		return nil, nil
	}
	ttl := 10 * time.Minute
	if cfg.Cache.TTL != "" {
		parsed, err := time.ParseDuration(cfg.Cache.TTL)
		if err != nil {
			return nil, fmt.Errorf("invalid cache ttl %q: %w", cfg.Cache.TTL, err)
		}
		ttl = parsed
	}
	provider := cfg.Cache.Provider
	if provider == "" {
		provider = "memory"
	}
	return cache.New(provider, cache.ProviderConfig{
		Size:          cfg.Cache.Size,
		TTL:           ttl,
		Logger:        cache.ZerologLogger{Logger: config.GetLogger()},
		RedisAddress:  cfg.Cache.RedisAddress,
		RedisPassword: cfg.Cache.RedisPassword,
		RedisDB:       cfg.Cache.RedisDB,
		Group:         "items",
	})
}

// authorizationHeader renders the MediaBrowser scheme the server expects from clients.
func authorizationHeader(client, device, deviceID, version, token string) string {
	quote := func(v string) string { return `"` + strings.ReplaceAll(v, `"`, "") + `"` }
	parts := []string{
		"Client=" + quote(client),
		"Device=" + quote(device),
		"DeviceId=" + quote(deviceID),
		"Version=" + quote(version),
	}
	if token != "" {
		parts = append(parts, "Token="+quote(token))
	}
	return "MediaBrowser " + strings.Join(parts, ", ")
}

func (c *client) BaseURL() string     { return c.baseURL }
func (c *client) AccessToken() string { return c.token }
func (c *client) DeviceID() string    { return c.deviceID }
func (c *client) UserID() string      { return c.userID }

// Close releases any resources held by the client, such as cache connections.
func (c *client) Close() error {
	if c.itemCache == nil {
		return nil
	}
	return c.itemCache.Close()
}
