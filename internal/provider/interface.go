package provider

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrSeriesNotFound means a series search returned nothing usable. It is
	// fatal for the run that issued it.
	ErrSeriesNotFound = errors.New("series not found")
	// ErrEpisodeNotFound means the series exists but the requested episode does not.
	ErrEpisodeNotFound = errors.New("episode not found")
	// ErrNotConfigured is returned by lookups built without credentials.
	ErrNotConfigured = errors.New("provider not configured")
)

// TitleLookup is the metadata capability consumed by the renamer: resolve a
// series name to an identifier, then fetch episode titles for that series.
type TitleLookup interface {
	// SearchSeries resolves a series name to a provider specific identifier.
	SearchSeries(ctx context.Context, name, language string) (string, error)
	// EpisodeTitle fetches the title of one episode.
	EpisodeTitle(ctx context.Context, seriesID string, season, episode int) (string, error)
	// EpisodeCount reports how many episodes the service lists for a season.
	EpisodeCount(ctx context.Context, seriesID string, season int) (int, error)
}

// Settings configures a lookup backend.
type Settings struct {
	APIKey   string
	Language string

	// HTTPClient overrides the transport for backends that accept one.
	HTTPClient *http.Client
}

// ProviderError represents an error from a provider
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	Retry      bool
	RetryAfter int // seconds
	Err        error
}

func (e *ProviderError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel classifying the failure, if any.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NotFound builds the NOT_FOUND error backends return for missing series or episodes.
func NotFound(providerName string, sentinel error, message string) *ProviderError {
	return &ProviderError{Provider: providerName, Code: "NOT_FOUND", Message: message, Err: sentinel}
}
