package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"songbird/internal/model"
)

// Recommendations is what RecommendAgent needs from the recommender.
type Recommendations interface {
	Recommend(ctx context.Context, songTitle string) []string
}

// RecommendAgent answers chat messages that name a song with a numbered list of recommendations.
type RecommendAgent struct {
	Recommender Recommendations
}

func NewRecommendAgent(r Recommendations) *RecommendAgent {
	return &RecommendAgent{Recommender: r}
}

func (a *RecommendAgent) Name() string {
	return "RecommendAgent"
}

var commandPrefix = regexp.MustCompile(`(?i)^(/?recommend(ations)?|songs? like|similar to)\s*:?\s*`)

func (a *RecommendAgent) Process(ctx context.Context, msg *model.InternalMessage) (string, error) {
	text := strings.TrimSpace(msg.Text)
	if text == "ping" {
		return "pong", nil
	}

	song := strings.TrimSpace(commandPrefix.ReplaceAllString(text, ""))
	song = strings.Trim(song, `"'“”`)
	if song == "" {
		return "Send me a song title and I will recommend similar songs.", nil
	}

	recs := a.Recommender.Recommend(ctx, song)
	if len(recs) == 0 {
		return fmt.Sprintf("Sorry, I could not find recommendations for %q.", song), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Songs like %q:\n", song))
	for i, rec := range recs {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, rec))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
