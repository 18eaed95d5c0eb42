package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"songbird/internal/agent"
	"songbird/internal/core"
	"songbird/internal/media"
	"songbird/internal/similarity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSongs struct {
	songs     []media.Song
	streamURL string
	err       error
	queries   []string
}

func (f *fakeSongs) Search(ctx context.Context, query string) ([]media.Song, error) {
	f.queries = append(f.queries, query)
	return f.songs, f.err
}

func (f *fakeSongs) SearchMany(ctx context.Context, queries []string) ([]media.Song, error) {
	f.queries = append(f.queries, queries...)
	return f.songs, f.err
}

func (f *fakeSongs) StreamURL(ctx context.Context, videoURL string) (string, error) {
	return f.streamURL, f.err
}

type fakeRecommender map[string][]string

func (f fakeRecommender) Recommend(ctx context.Context, songTitle string) []string {
	return f[songTitle]
}

type fakeSimilar struct {
	k int
}

func (f *fakeSimilar) Recommend(title string, k int) ([]string, error) {
	f.k = k
	if title != "Imagine" {
		return nil, fmt.Errorf("%w: %q", similarity.ErrUnknownSong, title)
	}
	return []string{"Jealous Guy"}, nil
}

func newTestAdapter(songs *fakeSongs, recs fakeRecommender) *Adapter {
	logger := zap.NewNop()
	d := core.NewDispatcher(logger)
	d.RegisterAgent(agent.NewRecommendAgent(recs))
	return NewAdapter("0", d, songs, recs, logger)
}

func do(t *testing.T, a *Adapter, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)

	var detail map[string]any
	if w.Code >= 400 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	}
	return w, detail
}

func TestSearchEndpoint(t *testing.T) {
	songs := &fakeSongs{songs: []media.Song{{Name: "Imagine", ArtistName: "John Lennon", URL: "https://www.youtube.com/watch?v=x", Duration: 183}}}
	a := newTestAdapter(songs, nil)

	w, _ := do(t, a, http.MethodGet, "/search?query=imagine", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []media.Song
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, songs.songs, got)
	assert.Equal(t, []string{"imagine"}, songs.queries)
}

func TestSearchEndpointErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		status int
		detail string
	}{
		{"missing query", "/search", nil, http.StatusBadRequest, "A search query is required."},
		{"blank query", "/search?query=%20", nil, http.StatusBadRequest, "A search query is required."},
		{"download", "/search?query=x", fmt.Errorf("%w: HTTP Error 429", media.ErrDownload), http.StatusServiceUnavailable, "Service is unable"},
		{"other", "/search?query=x", errors.New("boom"), http.StatusInternalServerError, "An internal server error occurred."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(&fakeSongs{err: tt.err}, nil)
			w, body := do(t, a, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, body["detail"], tt.detail)
		})
	}
}

func TestStreamEndpoint(t *testing.T) {
	a := newTestAdapter(&fakeSongs{streamURL: "https://audio"}, nil)
	w, _ := do(t, a, http.MethodGet, "/stream?url=https://www.youtube.com/watch?v=x", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"stream_url":"https://audio"}`, w.Body.String())

	tests := []struct {
		err    error
		status int
	}{
		{media.ErrNoAudioStream, http.StatusNotFound},
		{fmt.Errorf("%w: private video", media.ErrDownload), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		a := newTestAdapter(&fakeSongs{err: tt.err}, nil)
		w, _ := do(t, a, http.MethodGet, "/stream?url=https://www.youtube.com/watch?v=x", "")
		assert.Equal(t, tt.status, w.Code, tt.err.Error())
	}

	w, body := do(t, a, http.MethodGet, "/stream", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "A YouTube video URL is required.", body["detail"])
}

func TestStreamEndpointRejectsNonHTTPURL(t *testing.T) {
	songs := &streamRecorder{}
	a := newTestAdapter(&fakeSongs{}, nil)
	a.Songs = songs

	for _, raw := range []string{"--cookies%3D%2Ftmp%2Fjar.txt", "--batch-file=/etc/passwd", "file:///etc/passwd", "watch?v=x"} {
		w, body := do(t, a, http.MethodGet, "/stream?url="+raw, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
		assert.Equal(t, "The video URL must be an http or https URL.", body["detail"], raw)
	}
	assert.Empty(t, songs.urls)
}

type streamRecorder struct {
	fakeSongs
	urls []string
}

func (s *streamRecorder) StreamURL(ctx context.Context, videoURL string) (string, error) {
	s.urls = append(s.urls, videoURL)
	return "https://audio", nil
}

func TestRecommendationsEndpoint(t *testing.T) {
	a := newTestAdapter(&fakeSongs{}, fakeRecommender{"Imagine": {"Jealous Guy", "Mind Games"}})

	w, _ := do(t, a, http.MethodGet, "/recommendations?song=Imagine", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Jealous Guy","Mind Games"]`, w.Body.String())

	w, body := do(t, a, http.MethodGet, "/recommendations?song=Unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Could not find recommendations", body["detail"])

	w, _ = do(t, a, http.MethodGet, "/recommendations", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimilarEndpoint(t *testing.T) {
	a := newTestAdapter(&fakeSongs{}, nil)

	w, _ := do(t, a, http.MethodGet, "/recommendations/similar?song=Imagine", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	sim := &fakeSimilar{}
	a.Similar = sim

	w, _ = do(t, a, http.MethodGet, "/recommendations/similar?song=Imagine&k=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Jealous Guy"]`, w.Body.String())
	assert.Equal(t, 3, sim.k)

	w, _ = do(t, a, http.MethodGet, "/recommendations/similar?song=Imagine", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultSimilarCount, sim.k)

	w, _ = do(t, a, http.MethodGet, "/recommendations/similar?song=Yesterday", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, a, http.MethodGet, "/recommendations/similar?song=Imagine&k=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchSongsEndpoint(t *testing.T) {
	songs := &fakeSongs{}
	a := newTestAdapter(songs, nil)

	w, _ := do(t, a, http.MethodPost, "/search-songs/", `{"queries":["a","b"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Equal(t, []string{"a", "b"}, songs.queries)

	w, _ = do(t, a, http.MethodPost, "/search-songs/", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	a = newTestAdapter(&fakeSongs{err: errors.New("yt-dlp exploded")}, nil)
	w, body := do(t, a, http.MethodPost, "/search-songs/", `{"queries":["a"]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An internal error occurred: yt-dlp exploded", body["detail"])
}

func TestChatEndpoint(t *testing.T) {
	a := newTestAdapter(&fakeSongs{}, fakeRecommender{"Imagine": {"Jealous Guy"}})

	w, _ := do(t, a, http.MethodPost, "/api/v1/chat", `{"user_id":"u1","text":"songs like Imagine"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Songs like \"Imagine\":\n1. Jealous Guy", resp.Response)

	w, _ = do(t, a, http.MethodPost, "/api/v1/chat", `{"text":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	a := newTestAdapter(&fakeSongs{}, nil)
	w, _ := do(t, a, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
