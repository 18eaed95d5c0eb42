package agent

import (
	"context"
	"testing"

	"songbird/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRecommendations struct {
	recs []string
	got  string
}

func (f *fixedRecommendations) Recommend(ctx context.Context, songTitle string) []string {
	f.got = songTitle
	return f.recs
}

func TestRecommendAgentProcess(t *testing.T) {
	f := &fixedRecommendations{recs: []string{"Song A", "Song B"}}
	a := NewRecommendAgent(f)

	reply, err := a.Process(context.Background(), &model.InternalMessage{Text: `recommend: "Bohemian Rhapsody"`})
	require.NoError(t, err)

	assert.Equal(t, "Bohemian Rhapsody", f.got)
	assert.Equal(t, "Songs like \"Bohemian Rhapsody\":\n1. Song A\n2. Song B", reply)
}

func TestRecommendAgentNoRecommendations(t *testing.T) {
	a := NewRecommendAgent(&fixedRecommendations{})

	reply, err := a.Process(context.Background(), &model.InternalMessage{Text: "Imagine"})
	require.NoError(t, err)
	assert.Contains(t, reply, "could not find recommendations")
}

func TestRecommendAgentShortcuts(t *testing.T) {
	f := &fixedRecommendations{recs: []string{"x"}}
	a := NewRecommendAgent(f)

	reply, err := a.Process(context.Background(), &model.InternalMessage{Text: " ping "})
	require.NoError(t, err)
	assert.Equal(t, "pong", reply)

	reply, err = a.Process(context.Background(), &model.InternalMessage{Text: "/recommend"})
	require.NoError(t, err)
	assert.Contains(t, reply, "Send me a song title")
	assert.Empty(t, f.got)
}
