package omdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/omdb"
	"github.com/Digital-Shane/tv-renamer/internal/provider"
)

const providerName = "omdb"

// Provider resolves series and episode titles against the Open Movie Database.
// OMDb ids are IMDb ids such as "tt0944947".
type Provider struct {
	client *omdb.Client
}

// New creates an OMDb provider. settings.HTTPClient replaces the default
// transport; OMDb has no localized titles so settings.Language is unused.
func New(settings provider.Settings) (*Provider, error) {
	apiKey := strings.TrimSpace(settings.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: omdb api key is required", provider.ErrNotConfigured)
	}

	httpClient := settings.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Provider{client: omdb.NewClient(apiKey, httpClient)}, nil
}

// SearchSeries returns the IMDb id of the series best matching name.
func (p *Provider) SearchSeries(ctx context.Context, name, language string) (string, error) {
	if p.client == nil {
		return "", provider.ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	title := strings.TrimSpace(name)
	if title == "" {
		return "", provider.NotFound(providerName, provider.ErrSeriesNotFound, "series search requires a name")
	}

	result, err := p.client.SearchByTitle(omdb.QueryData{Title: title, SearchType: "series"})
	if err != nil {
		return "", mapError(err, provider.ErrSeriesNotFound)
	}

	var id string
	switch series := result.(type) {
	case omdb.SeriesResult:
		id = series.ImdbID
	case *omdb.SeriesResult:
		id = series.ImdbID
	}
	if strings.TrimSpace(id) == "" {
		return "", provider.NotFound(providerName, provider.ErrSeriesNotFound, fmt.Sprintf("no results found for show: %s", name))
	}
	return strings.TrimSpace(id), nil
}

// EpisodeTitle fetches the title of one episode.
func (p *Provider) EpisodeTitle(ctx context.Context, seriesID string, season, episode int) (string, error) {
	if p.client == nil {
		return "", provider.ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	result, err := p.client.SearchByImdbID(omdb.QueryData{
		ImdbID:  strings.TrimSpace(seriesID),
		Season:  strconv.Itoa(season),
		Episode: strconv.Itoa(episode),
	})
	if err != nil {
		return "", mapError(err, provider.ErrEpisodeNotFound)
	}

	var title string
	switch ep := result.(type) {
	case omdb.EpisodeResult:
		title = ep.Title
	case *omdb.EpisodeResult:
		title = ep.Title
	}
	if strings.TrimSpace(title) == "" {
		return "", provider.NotFound(providerName, provider.ErrEpisodeNotFound, fmt.Sprintf("episode S%02dE%02d not found", season, episode))
	}
	return strings.TrimSpace(title), nil
}

// EpisodeCount reports how many episodes OMDb lists for the season.
func (p *Provider) EpisodeCount(ctx context.Context, seriesID string, season int) (int, error) {
	if p.client == nil {
		return 0, provider.ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	result, err := p.client.SearchByImdbID(omdb.QueryData{
		ImdbID: strings.TrimSpace(seriesID),
		Season: strconv.Itoa(season),
	})
	if err != nil {
		return 0, mapError(err, provider.ErrEpisodeNotFound)
	}

	switch s := result.(type) {
	case omdb.SeasonResult:
		return len(s.Episodes), nil
	case *omdb.SeasonResult:
		return len(s.Episodes), nil
	default:
		return 0, nil
	}
}

func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "invalid api key"), strings.Contains(lower, "missing omdb api key"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     "AUTH_FAILED",
			Message:  "OMDb authentication failed: " + msg,
			Retry:    false,
		}
	case strings.Contains(lower, "not found"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     "NOT_FOUND",
			Message:  msg,
			Retry:    false,
			Err:      notFound,
		}
	case strings.Contains(lower, "limit reached"), strings.Contains(lower, "too many requests"):
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       "RATE_LIMITED",
			Message:    msg,
			Retry:      true,
			RetryAfter: 5,
		}
	default:
		return &provider.ProviderError{
			Provider: providerName,
			Code:     "UNKNOWN",
			Message:  msg,
			Retry:    false,
		}
	}
}
