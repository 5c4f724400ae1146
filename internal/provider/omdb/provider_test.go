package omdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Digital-Shane/tv-renamer/internal/provider"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripFunc) *http.Client {
	return &http.Client{Transport: fn}
}

func jsonResponse(status int, body string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

// gameOfThrones serves a tiny slice of the OMDb catalogue.
func gameOfThrones(req *http.Request) (*http.Response, error) {
	q := req.URL.Query()
	switch {
	case q.Get("Episode") == "1":
		return jsonResponse(200, `{
			"Title": "Winter Is Coming",
			"Year": "2011",
			"Season": "1",
			"Episode": "1",
			"imdbID": "tt1480055",
			"seriesID": "tt0944947",
			"Type": "episode",
			"Response": "True"
		}`), nil
	case q.Get("Episode") != "":
		return jsonResponse(200, `{"Response": "False", "Error": "Episode not found!"}`), nil
	case q.Get("Season") != "":
		return jsonResponse(200, `{
			"Title": "Game of Thrones",
			"Season": "1",
			"totalSeasons": "8",
			"Episodes": [
				{"Title": "Winter Is Coming", "Released": "2011-04-17", "Episode": "1", "imdbRating": "8.9", "imdbID": "tt1480055"},
				{"Title": "The Kingsroad", "Released": "2011-04-24", "Episode": "2", "imdbRating": "8.6", "imdbID": "tt1668746"},
				{"Title": "Lord Snow", "Released": "2011-05-01", "Episode": "3", "imdbRating": "8.5", "imdbID": "tt1829962"}
			],
			"Response": "True"
		}`), nil
	default:
		return jsonResponse(200, `{
			"Title": "Game of Thrones",
			"Year": "2011–2019",
			"imdbID": "tt0944947",
			"Type": "series",
			"totalSeasons": "8",
			"Response": "True"
		}`), nil
	}
}

func newTestProvider(t *testing.T, fn roundTripFunc) *Provider {
	t.Helper()
	prov, err := New(provider.Settings{APIKey: "testing", HTTPClient: newTestClient(fn)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return prov
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(provider.Settings{APIKey: "  "}); !errors.Is(err, provider.ErrNotConfigured) {
		t.Fatalf("New() error = %v, want ErrNotConfigured", err)
	}
}

func TestSearchSeries(t *testing.T) {
	var gotKey string
	prov := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		gotKey = req.URL.Query().Get("apikey")
		return gameOfThrones(req)
	})

	id, err := prov.SearchSeries(context.Background(), "Game of Thrones", "en")
	if err != nil {
		t.Fatalf("SearchSeries() error = %v", err)
	}
	if id != "tt0944947" {
		t.Errorf("SearchSeries() = %q, want tt0944947", id)
	}
	if gotKey != "testing" {
		t.Errorf("apikey = %q, want testing", gotKey)
	}
}

func TestEpisodeTitle(t *testing.T) {
	prov := newTestProvider(t, gameOfThrones)

	title, err := prov.EpisodeTitle(context.Background(), "tt0944947", 1, 1)
	if err != nil {
		t.Fatalf("EpisodeTitle() error = %v", err)
	}
	if title != "Winter Is Coming" {
		t.Errorf("EpisodeTitle() = %q, want Winter Is Coming", title)
	}

	if _, err := prov.EpisodeTitle(context.Background(), "tt0944947", 1, 42); err == nil {
		t.Error("EpisodeTitle(missing) expected error")
	}
}

func TestEpisodeCount(t *testing.T) {
	prov := newTestProvider(t, gameOfThrones)

	got, err := prov.EpisodeCount(context.Background(), "tt0944947", 1)
	if err != nil {
		t.Fatalf("EpisodeCount() error = %v", err)
	}
	if got != 3 {
		t.Errorf("EpisodeCount() = %d, want 3", got)
	}
}

func TestCancelledContext(t *testing.T) {
	called := false
	prov := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		called = true
		return gameOfThrones(req)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := prov.SearchSeries(ctx, "Game of Thrones", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("SearchSeries() error = %v, want context.Canceled", err)
	}
	if called {
		t.Error("no request should be issued after cancellation")
	}
}

func TestMapError(t *testing.T) {
	tests := map[string]struct {
		msg      string
		wantCode string
	}{
		"auth":       {msg: "Invalid API key!", wantCode: "AUTH_FAILED"},
		"not found":  {msg: "Series not found!", wantCode: "NOT_FOUND"},
		"rate limit": {msg: "Request limit reached!", wantCode: "RATE_LIMITED"},
		"other":      {msg: "boom", wantCode: "UNKNOWN"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var perr *provider.ProviderError
			if !errors.As(mapError(errors.New(tc.msg), provider.ErrSeriesNotFound), &perr) {
				t.Fatal("mapError() did not return *provider.ProviderError")
			}
			if perr.Code != tc.wantCode {
				t.Errorf("Code = %q, want %q", perr.Code, tc.wantCode)
			}
		})
	}

	if !errors.Is(mapError(errors.New("Series not found!"), provider.ErrSeriesNotFound), provider.ErrSeriesNotFound) {
		t.Error("NOT_FOUND should wrap the supplied sentinel")
	}
	if err := mapError(context.Canceled, nil); err != context.Canceled {
		t.Errorf("mapError(context.Canceled) = %v, want passthrough", err)
	}
}
