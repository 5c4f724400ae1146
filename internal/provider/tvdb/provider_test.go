package tvdb

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Digital-Shane/tv-renamer/internal/provider"
	tvdbapi "github.com/dashotv/tvdb"
	"github.com/dashotv/tvdb/openapi/models/operations"
)

type mockTVDBClient struct {
	searchFunc   func(operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error)
	episodesFunc func(operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error)
}

func (m *mockTVDBClient) GetSearchResults(req operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error) {
	if m.searchFunc != nil {
		return m.searchFunc(req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTVDBClient) GetSeriesEpisodes(req operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error) {
	if m.episodesFunc != nil {
		return m.episodesFunc(req)
	}
	return nil, errors.New("not implemented")
}

func searchResponse(t *testing.T, body string) *tvdbapi.GetSearchResultsResponse {
	t.Helper()
	var resp tvdbapi.GetSearchResultsResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode search fixture: %v", err)
	}
	return &resp
}

func episodesResponse(t *testing.T, body string) *tvdbapi.GetSeriesEpisodesResponse {
	t.Helper()
	var resp tvdbapi.GetSeriesEpisodesResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode episodes fixture: %v", err)
	}
	return &resp
}

func TestSearchSeries(t *testing.T) {
	var gotQuery, gotType string
	client := &mockTVDBClient{
		searchFunc: func(req operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error) {
			gotQuery = *req.Query
			gotType = *req.Type
			return searchResponse(t, `{"data":[
				{"id":"movie-12","tvdb_id":"12","type":"movie","name":"Breaking Bad Movie"},
				{"id":"series-81189","tvdb_id":"81189","type":"series","name":"Breaking Bad"}
			]}`), nil
		},
	}

	id, err := NewWithClient(client).SearchSeries(context.Background(), "  Breaking Bad ", "en")
	if err != nil {
		t.Fatalf("SearchSeries() error = %v", err)
	}
	if id != "81189" {
		t.Errorf("SearchSeries() = %q, want 81189", id)
	}
	if gotQuery != "Breaking Bad" || gotType != "series" {
		t.Errorf("search request = (%q, %q), want (Breaking Bad, series)", gotQuery, gotType)
	}
}

func TestSearchSeriesNoResults(t *testing.T) {
	client := &mockTVDBClient{
		searchFunc: func(operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error) {
			return searchResponse(t, `{"data":[]}`), nil
		},
	}

	_, err := NewWithClient(client).SearchSeries(context.Background(), "Nothing", "")
	if !errors.Is(err, provider.ErrSeriesNotFound) {
		t.Fatalf("SearchSeries() error = %v, want ErrSeriesNotFound", err)
	}
}

func TestEpisodeTitle(t *testing.T) {
	var gotReq operations.GetSeriesEpisodesRequest
	client := &mockTVDBClient{
		episodesFunc: func(req operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error) {
			gotReq = req
			return episodesResponse(t, `{"data":{"episodes":[
				{"number":2,"name":"Cat's in the Bag..."},
				{"number":3,"name":"...And the Bag's in the River"}
			]}}`), nil
		},
	}
	p := NewWithClient(client)

	title, err := p.EpisodeTitle(context.Background(), "81189", 1, 3)
	if err != nil {
		t.Fatalf("EpisodeTitle() error = %v", err)
	}
	if title != "...And the Bag's in the River" {
		t.Errorf("EpisodeTitle() = %q", title)
	}
	if gotReq.ID != 81189 || gotReq.SeasonType != "official" || *gotReq.Season != 1 || *gotReq.EpisodeNumber != 3 {
		t.Errorf("unexpected episodes request: %+v", gotReq)
	}

	_, err = p.EpisodeTitle(context.Background(), "81189", 1, 9)
	if !errors.Is(err, provider.ErrEpisodeNotFound) {
		t.Errorf("EpisodeTitle(missing) error = %v, want ErrEpisodeNotFound", err)
	}
}

func TestEpisodeTitleUnnamed(t *testing.T) {
	client := &mockTVDBClient{
		episodesFunc: func(req operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error) {
			return episodesResponse(t, `{"data":{"episodes":[
				{"number":4,"name":""},
				{"number":5}
			]}}`), nil
		},
	}
	p := NewWithClient(client)

	for _, episode := range []int{4, 5} {
		title, err := p.EpisodeTitle(context.Background(), "81189", 2, episode)
		if err != nil {
			t.Errorf("EpisodeTitle(E%02d) error = %v, want nil", episode, err)
		}
		if title != "" {
			t.Errorf("EpisodeTitle(E%02d) = %q, want empty", episode, title)
		}
	}
}

func TestEpisodeCount(t *testing.T) {
	client := &mockTVDBClient{
		episodesFunc: func(req operations.GetSeriesEpisodesRequest) (*tvdbapi.GetSeriesEpisodesResponse, error) {
			if req.EpisodeNumber != nil {
				t.Errorf("EpisodeCount should not filter by episode, got %d", *req.EpisodeNumber)
			}
			return episodesResponse(t, `{"data":{"episodes":[
				{"number":1,"name":"a"},{"number":2,"name":"b"},{"number":3,"name":"c"}
			]}}`), nil
		},
	}

	got, err := NewWithClient(client).EpisodeCount(context.Background(), "81189", 1)
	if err != nil {
		t.Fatalf("EpisodeCount() error = %v", err)
	}
	if got != 3 {
		t.Errorf("EpisodeCount() = %d, want 3", got)
	}
}

func TestInvalidSeriesID(t *testing.T) {
	_, err := NewWithClient(&mockTVDBClient{}).EpisodeCount(context.Background(), "abc", 1)
	if !errors.Is(err, provider.ErrSeriesNotFound) {
		t.Errorf("EpisodeCount(abc) error = %v, want ErrSeriesNotFound", err)
	}
}

func TestMapError(t *testing.T) {
	tests := map[string]struct {
		msg      string
		wantCode string
		wantErr  error
	}{
		"auth":        {msg: "401 Unauthorized", wantCode: "AUTH_FAILED"},
		"rate limit":  {msg: "429 Too Many Requests", wantCode: "RATE_LIMITED"},
		"not found":   {msg: "404 not found", wantCode: "NOT_FOUND", wantErr: provider.ErrEpisodeNotFound},
		"unavailable": {msg: "503 Service Unavailable", wantCode: "UNAVAILABLE"},
		"other":       {msg: "boom", wantCode: "UNKNOWN"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := mapError(errors.New(tc.msg), provider.ErrEpisodeNotFound)
			var perr *provider.ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("mapError() = %T, want *provider.ProviderError", err)
			}
			if perr.Code != tc.wantCode {
				t.Errorf("Code = %q, want %q", perr.Code, tc.wantCode)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("mapError() does not wrap %v", tc.wantErr)
			}
		})
	}

	if mapError(nil, nil) != nil {
		t.Error("mapError(nil) should be nil")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(provider.Settings{})
	if !errors.Is(err, provider.ErrNotConfigured) {
		t.Errorf("New() error = %v, want ErrNotConfigured", err)
	}
}
