package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Digital-Shane/tv-renamer/internal/provider"
	"github.com/google/go-cmp/cmp"
	tmdb "github.com/ryanbradynd05/go-tmdb"
)

// mockTMDBClient implements TMDBClient for testing
type mockTMDBClient struct {
	searchTvFunc         func(name string, options map[string]string) (*tmdb.TvSearchResults, error)
	getTvSeasonInfoFunc  func(showID, seasonID int, options map[string]string) (*tmdb.TvSeason, error)
	getTvEpisodeInfoFunc func(showID, seasonNum, episodeNum int, options map[string]string) (*tmdb.TvEpisode, error)
}

func (m *mockTMDBClient) SearchTv(name string, options map[string]string) (*tmdb.TvSearchResults, error) {
	if m.searchTvFunc != nil {
		return m.searchTvFunc(name, options)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTMDBClient) GetTvSeasonInfo(showID, seasonID int, options map[string]string) (*tmdb.TvSeason, error) {
	if m.getTvSeasonInfoFunc != nil {
		return m.getTvSeasonInfoFunc(showID, seasonID, options)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTMDBClient) GetTvEpisodeInfo(showID, seasonNum, episodeNum int, options map[string]string) (*tmdb.TvEpisode, error) {
	if m.getTvEpisodeInfoFunc != nil {
		return m.getTvEpisodeInfoFunc(showID, seasonNum, episodeNum, options)
	}
	return nil, errors.New("not implemented")
}

func tvSearchResults(t *testing.T, body string) *tmdb.TvSearchResults {
	t.Helper()
	var res tmdb.TvSearchResults
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		t.Fatalf("decode search fixture: %v", err)
	}
	return &res
}

func TestSearchSeries(t *testing.T) {
	tests := map[string]struct {
		name         string
		language     string
		body         string
		want         string
		wantLanguage string
		wantErr      error
	}{
		"first result": {
			name:         "Breaking Bad",
			body:         `{"results":[{"id":1396,"name":"Breaking Bad"},{"id":99,"name":"Breaking Bad 2"}]}`,
			want:         "1396",
			wantLanguage: "en-US",
		},
		"language override": {
			name:         "Dark",
			language:     "de-DE",
			body:         `{"results":[{"id":70523,"name":"Dark"}]}`,
			want:         "70523",
			wantLanguage: "de-DE",
		},
		"no results": {
			name:         "Nothing",
			body:         `{"results":[]}`,
			wantLanguage: "en-US",
			wantErr:      provider.ErrSeriesNotFound,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var gotOptions map[string]string
			client := &mockTMDBClient{
				searchTvFunc: func(query string, options map[string]string) (*tmdb.TvSearchResults, error) {
					gotOptions = options
					return tvSearchResults(t, tc.body), nil
				},
			}

			got, err := NewWithClient(client, "").SearchSeries(context.Background(), tc.name, tc.language)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("SearchSeries() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SearchSeries() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("SearchSeries() = %q, want %q", got, tc.want)
			}
			if diff := cmp.Diff(map[string]string{"language": tc.wantLanguage}, gotOptions); diff != "" {
				t.Errorf("search options mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEpisodeTitle(t *testing.T) {
	client := &mockTMDBClient{
		getTvEpisodeInfoFunc: func(showID, seasonNum, episodeNum int, options map[string]string) (*tmdb.TvEpisode, error) {
			if showID != 1396 || seasonNum != 1 || episodeNum != 1 {
				return nil, errors.New("404 The resource you requested could not be found.")
			}
			return &tmdb.TvEpisode{Name: " Pilot ", SeasonNumber: 1, EpisodeNumber: 1}, nil
		},
	}
	p := NewWithClient(client, "en-GB")

	got, err := p.EpisodeTitle(context.Background(), "1396", 1, 1)
	if err != nil {
		t.Fatalf("EpisodeTitle() error = %v", err)
	}
	if got != "Pilot" {
		t.Errorf("EpisodeTitle() = %q, want Pilot", got)
	}

	_, err = p.EpisodeTitle(context.Background(), "1396", 1, 20)
	if !errors.Is(err, provider.ErrEpisodeNotFound) {
		t.Errorf("EpisodeTitle(missing) error = %v, want ErrEpisodeNotFound", err)
	}

	_, err = p.EpisodeTitle(context.Background(), "not-a-number", 1, 1)
	if !errors.Is(err, provider.ErrSeriesNotFound) {
		t.Errorf("EpisodeTitle(bad id) error = %v, want ErrSeriesNotFound", err)
	}
}

func TestEpisodeCount(t *testing.T) {
	client := &mockTMDBClient{
		getTvSeasonInfoFunc: func(showID, seasonID int, options map[string]string) (*tmdb.TvSeason, error) {
			var season tmdb.TvSeason
			body := `{"season_number":2,"episodes":[{"name":"a"},{"name":"b"},{"name":"c"},{"name":"d"}]}`
			if err := json.Unmarshal([]byte(body), &season); err != nil {
				t.Fatalf("decode season fixture: %v", err)
			}
			return &season, nil
		},
	}

	got, err := NewWithClient(client, "").EpisodeCount(context.Background(), "1396", 2)
	if err != nil {
		t.Fatalf("EpisodeCount() error = %v", err)
	}
	if got != 4 {
		t.Errorf("EpisodeCount() = %d, want 4", got)
	}
}

func TestErrorMapping(t *testing.T) {
	p := NewWithClient(&mockTMDBClient{}, "")

	tests := map[string]struct {
		err      error
		wantCode string
		retry    bool
	}{
		"unauthorized": {err: errors.New("401 Unauthorized"), wantCode: "AUTH_FAILED"},
		"rate limited": {err: errors.New("429 Too Many Requests"), wantCode: "RATE_LIMITED", retry: true},
		"missing":      {err: errors.New("404 Not Found"), wantCode: "NOT_FOUND"},
		"unavailable":  {err: errors.New("503 Service Unavailable"), wantCode: "UNAVAILABLE", retry: true},
		"other":        {err: errors.New("connection reset"), wantCode: "UNKNOWN"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var perr *provider.ProviderError
			if !errors.As(p.mapError(tc.err, provider.ErrEpisodeNotFound), &perr) {
				t.Fatal("mapError() did not return *provider.ProviderError")
			}
			if perr.Code != tc.wantCode || perr.Retry != tc.retry {
				t.Errorf("mapError() = (%s, retry %v), want (%s, retry %v)", perr.Code, perr.Retry, tc.wantCode, tc.retry)
			}
		})
	}

	if p.mapError(nil, nil) != nil {
		t.Error("mapError(nil) should return nil")
	}
}

func TestSearchSeriesCancelled(t *testing.T) {
	p := NewWithClient(&mockTMDBClient{}, "")
	p.rateLimiter = newRateLimiter(1, time.Hour)
	p.rateLimiter.reserve(time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.SearchSeries(ctx, "Anything", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("SearchSeries() error = %v, want context.Canceled", err)
	}
}
