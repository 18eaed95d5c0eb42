package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrDownload means yt-dlp could not fetch data from the video platform.
	ErrDownload = errors.New("unable to fetch data from video platform")

	ErrNoAudioStream = errors.New("no audio-only stream found")

	ErrInvalidURL = errors.New("video url must be an absolute http(s) url")
)

// Runner executes yt-dlp with args and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

type execRunner struct {
	path string
}

func (r execRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%w: %s", ErrDownload, msg)
	}
	return stdout.Bytes(), nil
}

type Client struct {
	runner  Runner
	timeout time.Duration
	logger  *zap.Logger
}

type Option func(*Client)

func WithRunner(r Runner) Option {
	return func(c *Client) {
		c.runner = r
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient returns a client that shells out to the yt-dlp binary at path.
func NewClient(path string, opts ...Option) *Client {
	if path == "" {
		path = "yt-dlp"
	}
	c := &Client{
		runner:  execRunner{path: path},
		timeout: 45 * time.Second,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// extract runs yt-dlp on target with extra options. target always follows "--"
// so caller input is never parsed as an option.
func (c *Client) extract(ctx context.Context, v any, target string, opts ...string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := []string{"--dump-single-json", "--no-warnings", "--quiet", "--no-playlist"}
	args = append(args, opts...)
	args = append(args, "--", target)
	out, err := c.runner.Run(ctx, args...)
	if err != nil {
		if !errors.Is(err, ErrDownload) {
			err = fmt.Errorf("%w: %w", ErrDownload, err)
		}
		c.logger.Warn("An error occurred while fetching from the video platform", zap.String("target", target), zap.Strings("options", opts), zap.Error(err))
		return err
	}
	if err := json.Unmarshal(out, v); err != nil {
		return errors.Wrap(err, "decode yt-dlp output")
	}
	return nil
}

// Search returns the top hit for query with full metadata.
func (c *Client) Search(ctx context.Context, query string) ([]Song, error) {
	var result searchResult
	if err := c.extract(ctx, &result, "ytsearch1:"+query); err != nil {
		return nil, err
	}
	return ParseEntries(result.Entries), nil
}

// SearchMany runs one flat top-hit search per query, in order, and concatenates the results.
func (c *Client) SearchMany(ctx context.Context, queries []string) ([]Song, error) {
	var entries []*Entry
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		var result searchResult
		if err := c.extract(ctx, &result, "ytsearch1:"+q, "--flat-playlist"); err != nil {
			return nil, err
		}
		entries = append(entries, result.Entries...)
	}
	c.logger.Debug("Finished fetching all data", zap.Int("queries", len(queries)), zap.Int("entries", len(entries)))
	return ParseEntries(entries), nil
}

// StreamURL returns a direct audio URL for the video at videoURL.
func (c *Client) StreamURL(ctx context.Context, videoURL string) (string, error) {
	if err := ValidateVideoURL(videoURL); err != nil {
		return "", err
	}
	var info VideoInfo
	if err := c.extract(ctx, &info, videoURL, "--format", "bestaudio/best"); err != nil {
		return "", err
	}
	u := ParseStreamURL(&info)
	if u == "" {
		return "", ErrNoAudioStream
	}
	return u, nil
}

// ValidateVideoURL accepts only absolute http and https URLs with a host.
func ValidateVideoURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrapf(ErrInvalidURL, "%q", raw)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Wrapf(ErrInvalidURL, "%q", raw)
	}
	return nil
}
