package similarity

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrUnknownSong = errors.New("song not in catalog")

type Track struct {
	Title    string
	Artist   string
	Features []float64
	norm     float64
}

// Catalog is a read-only set of tracks with numeric feature vectors,
// loaded once at startup.
type Catalog struct {
	tracks  []Track
	byTitle map[string]int
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	defer f.Close()
	return Load(f)
}

// Load reads a CSV with a header row: title, artist, then one column per feature.
func Load(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read catalog header")
	}
	if len(header) < 3 {
		return nil, errors.Errorf("catalog needs title, artist and at least one feature column, got %d columns", len(header))
	}
	dims := len(header) - 2

	c := &Catalog{byTitle: make(map[string]int)}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "catalog line %d", line)
		}
		t := Track{
			Title:    strings.TrimSpace(rec[0]),
			Artist:   strings.TrimSpace(rec[1]),
			Features: make([]float64, dims),
		}
		for i := 0; i < dims; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+2]), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "catalog line %d column %q", line, header[i+2])
			}
			t.Features[i] = v
			t.norm += v * v
		}
		t.norm = math.Sqrt(t.norm)

		key := normalizeTitle(t.Title)
		if _, dup := c.byTitle[key]; dup {
			continue
		}
		c.byTitle[key] = len(c.tracks)
		c.tracks = append(c.tracks, t)
	}
	return c, nil
}

func (c *Catalog) Len() int {
	return len(c.tracks)
}

// Recommend returns up to k titles most cosine-similar to title, best first.
// The seed track itself is never returned.
func (c *Catalog) Recommend(title string, k int) ([]string, error) {
	idx, ok := c.byTitle[normalizeTitle(title)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSong, "%q", title)
	}
	seed := c.tracks[idx]

	type scored struct {
		i     int
		score float64
	}
	candidates := make([]scored, 0, len(c.tracks)-1)
	for i, t := range c.tracks {
		if i == idx {
			continue
		}
		candidates = append(candidates, scored{i: i, score: cosine(seed, t)})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	if k <= 0 || k > len(candidates) {
		k = len(candidates)
	}
	out := make([]string, 0, k)
	for _, s := range candidates[:k] {
		out = append(out, c.tracks[s.i].Title)
	}
	return out, nil
}

func cosine(a, b Track) float64 {
	if a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for i := range a.Features {
		dot += a.Features[i] * b.Features[i]
	}
	return dot / (a.norm * b.norm)
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
