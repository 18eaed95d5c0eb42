package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	outputs map[string]string // keyed by the last argument
	err     error
	calls   [][]string
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.outputs[args[len(args)-1]]), nil
}

func TestSearch(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{
		"ytsearch1:bohemian rhapsody": `{"entries":[{"id":"fJ9rUzIMcZQ","title":"Queen - Bohemian Rhapsody","uploader":"Queen Official","duration":359.0,"thumbnail":"https://i.ytimg.com/vi/fJ9rUzIMcZQ/maxresdefault.jpg"}]}`,
	}}
	c := NewClient("", WithRunner(r))

	songs, err := c.Search(context.Background(), "bohemian rhapsody")
	require.NoError(t, err)

	require.Len(t, songs, 1)
	assert.Equal(t, Song{
		Name:       "Queen - Bohemian Rhapsody",
		ArtistName: "Queen Official",
		URL:        "https://www.youtube.com/watch?v=fJ9rUzIMcZQ",
		Thumbnail:  "https://i.ytimg.com/vi/fJ9rUzIMcZQ/maxresdefault.jpg",
		Duration:   359,
	}, songs[0])
	assert.Contains(t, r.calls[0], "--dump-single-json")
	assert.NotContains(t, r.calls[0], "--flat-playlist")
}

func TestSearchManyKeepsQueryOrder(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{
		"ytsearch1:first":  `{"entries":[{"id":"a","title":"A","thumbnails":[{"url":"small"},{"url":"large"}]}]}`,
		"ytsearch1:second": `{"entries":[null,{"id":"b","channel":"Channel B"}]}`,
	}}
	c := NewClient("yt-dlp", WithRunner(r))

	songs, err := c.SearchMany(context.Background(), []string{"first", "  ", "second"})
	require.NoError(t, err)

	require.Len(t, songs, 2)
	assert.Equal(t, "A", songs[0].Name)
	assert.Equal(t, "large", songs[0].Thumbnail)
	assert.Equal(t, "N/A", songs[0].ArtistName)
	assert.Equal(t, 0, songs[0].Duration)
	assert.Equal(t, "N/A", songs[1].Name)
	assert.Equal(t, "Channel B", songs[1].ArtistName)
	assert.Len(t, r.calls, 2)
	assert.Contains(t, r.calls[0], "--flat-playlist")
}

func TestSearchDownloadError(t *testing.T) {
	c := NewClient("", WithRunner(&fakeRunner{err: errors.New("exit status 1")}))

	_, err := c.Search(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDownload))

	_, err = c.SearchMany(context.Background(), []string{"x"})
	assert.True(t, errors.Is(err, ErrDownload))
}

func TestStreamURL(t *testing.T) {
	const video = "https://www.youtube.com/watch?v=abc"

	tests := []struct {
		name    string
		out     string
		want    string
		wantErr error
	}{
		{"top level url", `{"url":"https://audio/top","formats":[{"url":"https://audio/f","acodec":"opus","vcodec":"none"}]}`, "https://audio/top", nil},
		{"audio only format", `{"formats":[{"url":"https://av","acodec":"mp4a","vcodec":"avc1"},{"url":"https://audio/only","acodec":"opus","vcodec":"none"}]}`, "https://audio/only", nil},
		{"no audio", `{"formats":[{"url":"https://video","acodec":"none","vcodec":"vp9"}]}`, "", ErrNoAudioStream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{outputs: map[string]string{video: tt.out}}
			got, err := NewClient("", WithRunner(r)).StreamURL(context.Background(), video)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			args := r.calls[0]
			assert.Equal(t, []string{"--format", "bestaudio/best", "--", video}, args[len(args)-4:])
		})
	}
}

func TestStreamURLRejectsOptionLikeInput(t *testing.T) {
	for _, raw := range []string{
		"--cookies=/tmp/jar.txt",
		"--batch-file=/etc/passwd",
		"-o/tmp/x",
		"file:///etc/passwd",
		"ytsearch1:anything",
		"https://",
		"",
	} {
		r := &fakeRunner{}
		_, err := NewClient("", WithRunner(r)).StreamURL(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
		assert.Empty(t, r.calls, raw)
	}
}

func TestTargetFollowsSeparator(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{
		"ytsearch1:--cookies=/tmp/jar.txt": `{"entries":[]}`,
		"ytsearch1:b":                      `{"entries":[]}`,
	}}
	c := NewClient("", WithRunner(r))

	_, err := c.Search(context.Background(), "--cookies=/tmp/jar.txt")
	require.NoError(t, err)
	_, err = c.SearchMany(context.Background(), []string{"b"})
	require.NoError(t, err)

	for _, args := range r.calls {
		require.GreaterOrEqual(t, len(args), 2)
		assert.Equal(t, "--", args[len(args)-2])
		assert.Equal(t, 1, countOf(args, "--"))
	}
}

func countOf(args []string, s string) int {
	n := 0
	for _, a := range args {
		if a == s {
			n++
		}
	}
	return n
}

func TestExtractRejectsGarbage(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"ytsearch1:x": "not json"}}
	_, err := NewClient("", WithRunner(r)).Search(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDownload))
	assert.True(t, strings.Contains(err.Error(), "decode"))
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, err := execRunner{path: "/nonexistent/yt-dlp"}.Run(context.Background(), "--version")
	assert.ErrorIs(t, err, ErrDownload)
}
