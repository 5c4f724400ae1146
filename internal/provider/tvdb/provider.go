package tvdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Digital-Shane/tv-renamer/internal/provider"
	tvdbapi "github.com/dashotv/tvdb"
	"github.com/dashotv/tvdb/openapi/models/operations"
	"github.com/dashotv/tvdb/openapi/models/shared"
)

const providerName = "tvdb"

// TVDBClient captures the dashotv client methods used by this provider.
type TVDBClient interface {
	GetSearchResults(request operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error)
	GetSeriesEpisodes(request operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error)
}

// Provider resolves series and episode titles against TheTVDB v4 API.
type Provider struct {
	client TVDBClient
}

// New logs in with the API key from settings.
func New(settings provider.Settings) (*Provider, error) {
	apiKey := strings.TrimSpace(settings.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: tvdb api key is required", provider.ErrNotConfigured)
	}

	client, err := tvdbapi.Login(apiKey)
	if err != nil {
		return nil, mapError(err, nil)
	}
	return &Provider{client: client}, nil
}

// NewWithClient wraps an already authenticated client.
func NewWithClient(client TVDBClient) *Provider {
	return &Provider{client: client}
}

// SearchSeries returns the TVDB id of the first series result for name.
// TVDB search has no language filter so language is ignored.
func (p *Provider) SearchSeries(ctx context.Context, name, language string) (string, error) {
	if p.client == nil {
		return "", provider.ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	query := strings.TrimSpace(name)
	if query == "" {
		return "", provider.NotFound(providerName, provider.ErrSeriesNotFound, "series search requires a name")
	}

	typeSeries := "series"
	resp, err := p.client.GetSearchResults(operations.GetSearchResultsRequest{Query: &query, Type: &typeSeries})
	if err != nil {
		return "", mapError(err, provider.ErrSeriesNotFound)
	}
	if resp == nil || len(resp.Data) == 0 {
		return "", provider.NotFound(providerName, provider.ErrSeriesNotFound, fmt.Sprintf("no results found for show: %s", name))
	}

	for _, candidate := range resp.Data {
		id := searchResultID(candidate)
		if id == 0 {
			continue
		}
		if t := pointerToString(candidate.Type); t == "" || strings.EqualFold(t, "series") {
			return strconv.FormatInt(id, 10), nil
		}
	}

	return "", provider.NotFound(providerName, provider.ErrSeriesNotFound, fmt.Sprintf("no results found for show: %s", name))
}

// EpisodeTitle fetches the official order title of one episode.
func (p *Provider) EpisodeTitle(ctx context.Context, seriesID string, season, episode int) (string, error) {
	if p.client == nil {
		return "", provider.ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	episodes, err := p.seasonEpisodes(seriesID, season, &episode)
	if err != nil {
		return "", err
	}

	// A listed episode without a name, often unaired or untranslated, still
	// exists and renders with an empty title.
	for _, e := range episodes {
		if e.Number != nil && int(*e.Number) == episode {
			return pointerToString(e.Name), nil
		}
	}
	return "", provider.NotFound(providerName, provider.ErrEpisodeNotFound, fmt.Sprintf("episode S%02dE%02d not found", season, episode))
}

// EpisodeCount reports how many episodes TVDB lists for the season.
func (p *Provider) EpisodeCount(ctx context.Context, seriesID string, season int) (int, error) {
	if p.client == nil {
		return 0, provider.ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	episodes, err := p.seasonEpisodes(seriesID, season, nil)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, e := range episodes {
		if e.Number != nil && *e.Number > 0 {
			count++
		}
	}
	return count, nil
}

func (p *Provider) seasonEpisodes(seriesID string, season int, episode *int) ([]shared.EpisodeBaseRecord, error) {
	id := parseInt64(seriesID)
	if id == 0 {
		return nil, &provider.ProviderError{Provider: providerName, Code: "INVALID_REQUEST", Message: fmt.Sprintf("invalid series id %q", seriesID), Err: provider.ErrSeriesNotFound}
	}

	seasonNum := int64(season)
	req := operations.GetSeriesEpisodesRequest{
		ID:         float64(id),
		SeasonType: "official",
		Season:     &seasonNum,
		Page:       0,
	}
	if episode != nil {
		episodeNum := int64(*episode)
		req.EpisodeNumber = &episodeNum
	}

	resp, err := p.client.GetSeriesEpisodes(req)
	if err != nil {
		return nil, mapError(err, provider.ErrEpisodeNotFound)
	}
	if resp == nil || resp.Data == nil {
		return nil, nil
	}
	return resp.Data.Episodes, nil
}

func searchResultID(result shared.SearchResult) int64 {
	if id := parseInt64(pointerToString(result.TvdbID)); id != 0 {
		return id
	}
	// Plain ids come back prefixed, e.g. "series-81189".
	raw := pointerToString(result.ID)
	if i := strings.LastIndex(raw, "-"); i >= 0 {
		raw = raw[i+1:]
	}
	return parseInt64(raw)
}

func pointerToString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func parseInt64(value string) int64 {
	parsed, _ := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	return parsed
}

// mapError classifies a client error. notFound is the sentinel attached to
// 404 responses; it depends on whether a series or an episode was requested.
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "401"), strings.Contains(lower, "unauthorized"), strings.Contains(lower, "apikey"):
		return &provider.ProviderError{Provider: providerName, Code: "AUTH_FAILED", Message: "TVDB authentication failed: " + msg, Retry: false}
	case strings.Contains(lower, "429"), strings.Contains(lower, "too many"):
		return &provider.ProviderError{Provider: providerName, Code: "RATE_LIMITED", Message: msg, Retry: true, RetryAfter: 5}
	case strings.Contains(lower, "404"), strings.Contains(lower, "not found"):
		return &provider.ProviderError{Provider: providerName, Code: "NOT_FOUND", Message: msg, Retry: false, Err: notFound}
	case strings.Contains(lower, "503"), strings.Contains(lower, "unavailable"):
		return &provider.ProviderError{Provider: providerName, Code: "UNAVAILABLE", Message: msg, Retry: true, RetryAfter: 30}
	default:
		return &provider.ProviderError{Provider: providerName, Code: "UNKNOWN", Message: msg, Retry: false}
	}
}
