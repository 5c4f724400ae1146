package tmdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/tv-renamer/internal/provider"
	"github.com/ryanbradynd05/go-tmdb"
)

const (
	providerName    = "tmdb"
	defaultLanguage = "en-US"
)

// TMDBClient interface for testing (matches *tmdb.TMDb exactly)
type TMDBClient interface {
	SearchTv(name string, options map[string]string) (*tmdb.TvSearchResults, error)
	GetTvSeasonInfo(showID, seasonID int, options map[string]string) (*tmdb.TvSeason, error)
	GetTvEpisodeInfo(showID, seasonNum, episodeNum int, options map[string]string) (*tmdb.TvEpisode, error)
}

// Provider resolves series and episode titles against The Movie Database.
type Provider struct {
	client      TMDBClient
	language    string
	rateLimiter *rateLimiter
}

// New creates a TMDB provider from settings.
func New(settings provider.Settings) (*Provider, error) {
	apiKey := strings.TrimSpace(settings.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: tmdb api key is required", provider.ErrNotConfigured)
	}

	client := tmdb.Init(tmdb.Config{
		APIKey:   apiKey,
		Proxies:  nil,
		UseProxy: false,
	})
	return NewWithClient(client, settings.Language), nil
}

// NewWithClient wraps an existing client. An empty language means en-US.
func NewWithClient(client TMDBClient, language string) *Provider {
	if language == "" {
		language = defaultLanguage
	}
	return &Provider{
		client:      client,
		language:    language,
		rateLimiter: newRateLimiter(38, 10*time.Second), // 38 requests per 10 seconds
	}
}

// SearchSeries returns the TMDB id of the first TV search result.
func (p *Provider) SearchSeries(ctx context.Context, name, language string) (string, error) {
	if p.client == nil {
		return "", provider.ErrNotConfigured
	}

	query := strings.TrimSpace(name)
	if query == "" {
		return "", provider.NotFound(providerName, provider.ErrSeriesNotFound, "series search requires a name")
	}

	if err := p.rateLimiter.wait(ctx); err != nil {
		return "", err
	}

	results, err := p.client.SearchTv(query, p.options(language))
	if err != nil {
		return "", p.mapError(err, provider.ErrSeriesNotFound)
	}
	if results == nil || len(results.Results) == 0 || results.Results[0].ID == 0 {
		return "", provider.NotFound(providerName, provider.ErrSeriesNotFound, fmt.Sprintf("no results found for show: %s", name))
	}

	return strconv.Itoa(results.Results[0].ID), nil
}

// EpisodeTitle fetches the localized title of one episode.
func (p *Provider) EpisodeTitle(ctx context.Context, seriesID string, season, episode int) (string, error) {
	if p.client == nil {
		return "", provider.ErrNotConfigured
	}

	showID, err := parseShowID(seriesID)
	if err != nil {
		return "", err
	}
	if err := p.rateLimiter.wait(ctx); err != nil {
		return "", err
	}

	info, err := p.client.GetTvEpisodeInfo(showID, season, episode, p.options(""))
	if err != nil {
		return "", p.mapError(err, provider.ErrEpisodeNotFound)
	}
	if info == nil || strings.TrimSpace(info.Name) == "" {
		return "", provider.NotFound(providerName, provider.ErrEpisodeNotFound, fmt.Sprintf("episode S%02dE%02d not found", season, episode))
	}

	return strings.TrimSpace(info.Name), nil
}

// EpisodeCount reports how many episodes TMDB lists for the season.
func (p *Provider) EpisodeCount(ctx context.Context, seriesID string, season int) (int, error) {
	if p.client == nil {
		return 0, provider.ErrNotConfigured
	}

	showID, err := parseShowID(seriesID)
	if err != nil {
		return 0, err
	}
	if err := p.rateLimiter.wait(ctx); err != nil {
		return 0, err
	}

	info, err := p.client.GetTvSeasonInfo(showID, season, p.options(""))
	if err != nil {
		return 0, p.mapError(err, provider.ErrEpisodeNotFound)
	}
	if info == nil {
		return 0, nil
	}
	return len(info.Episodes), nil
}

// options builds the query options; a per-call language wins over the
// configured one.
func (p *Provider) options(language string) map[string]string {
	if language == "" {
		language = p.language
	}
	return map[string]string{"language": language}
}

func parseShowID(seriesID string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(seriesID))
	if err != nil || id <= 0 {
		return 0, &provider.ProviderError{
			Provider: providerName,
			Code:     "INVALID_REQUEST",
			Message:  fmt.Sprintf("invalid show id %q", seriesID),
			Err:      provider.ErrSeriesNotFound,
		}
	}
	return id, nil
}

// mapError maps TMDB errors to provider errors. notFound classifies 404s.
func (p *Provider) mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "unauthorized") {
		return &provider.ProviderError{
			Provider: providerName,
			Code:     "AUTH_FAILED",
			Message:  "TMDB authentication failed: " + err.Error(),
			Retry:    false,
		}
	}
	if strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit") {
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       "RATE_LIMITED",
			Message:    "TMDB rate limit exceeded",
			Retry:      true,
			RetryAfter: 10,
		}
	}
	if strings.Contains(errStr, "404") || strings.Contains(errStr, "not found") || strings.Contains(errStr, "could not be found") {
		return &provider.ProviderError{
			Provider: providerName,
			Code:     "NOT_FOUND",
			Message:  "TMDB: " + err.Error(),
			Retry:    false,
			Err:      notFound,
		}
	}
	if strings.Contains(errStr, "503") || strings.Contains(errStr, "unavailable") {
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       "UNAVAILABLE",
			Message:    "TMDB service unavailable",
			Retry:      true,
			RetryAfter: 30,
		}
	}

	return &provider.ProviderError{
		Provider: providerName,
		Code:     "UNKNOWN",
		Message:  "TMDB error: " + err.Error(),
		Retry:    false,
	}
}
