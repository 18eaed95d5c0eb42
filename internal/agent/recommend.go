package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// seedPromptTemplate carries only the task; the assistant role goes out as the system instruction.
const seedPromptTemplate = `I will give you the title of a song. Based on that song, recommend exactly 10 other songs with the following mix:
- At least 2 songs by the same artist (if available).
- At least 2 songs from the same movie/album (if applicable).
- At least 2 songs of the same genre.
- At least 2 songs in the same language.
- The rest can be popular similar songs from any of the above categories.

Your final output should be ONLY the list of 10 song titles, one per line. Do not add any other text. Do not add song numbers.

Give recommendations for the song: %s`

func SeedPrompt(songTitle string) string {
	return fmt.Sprintf(seedPromptTemplate, songTitle)
}

// Recommend returns recommended song titles for songTitle. Every failure
// collapses to an empty slice; the caller maps that to "not found".
func (r *Recommender) Recommend(ctx context.Context, songTitle string) []string {
	songTitle = strings.TrimSpace(songTitle)
	if songTitle == "" {
		return []string{}
	}

	res, err := r.Run(ctx, SeedPrompt(songTitle))
	if err != nil {
		r.Logger.Error("Error in getting recommendations", zap.String("song", songTitle), zap.Error(err))
		return []string{}
	}

	recs := SplitRecommendations(res.Answer)
	r.Logger.Info("Recommendations ready",
		zap.String("song", songTitle),
		zap.Int("count", len(recs)),
		zap.Int("decisions", res.Decisions),
		zap.Int("messages", res.Conversation.Len()),
	)
	return recs
}

var listMarker = regexp.MustCompile(`^(?:[-*•]\s+|\d{1,2}[.)]\s+)`)

// SplitRecommendations turns the final answer into one title per non-empty line,
// dropping bullets and "1." style numbering the model adds despite the prompt.
func SplitRecommendations(answer string) []string {
	lines := strings.Split(strings.ReplaceAll(answer, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
