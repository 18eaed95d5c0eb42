package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"songbird/config"
	"songbird/internal/llm"
	"songbird/internal/media"
	"songbird/internal/search"
)

var failed bool

func main() {
	fmt.Println("🔍 Starting Backend Health Check...")
	fmt.Println("----------------------------------------")

	config.Init()
	cfg := config.AppConfig
	ctx := context.Background()

	// 1. Web search backends used by the agent tool
	fmt.Println("[Web Search] Checking backends...")
	registry, err := search.NewRegistryFromConfig(cfg.Search)
	if err != nil {
		fail("search registry", err)
	} else {
		for _, name := range registry.Names() {
			s, _ := registry.Get(name)
			checkSearch(ctx, s, "Bohemian Rhapsody similar songs")
		}
	}

	// 2. yt-dlp
	fmt.Println("\n[Video Platform] Checking yt-dlp...")
	songs := media.NewClient(cfg.Media.YtDlpPath, media.WithTimeout(cfg.Media.Timeout))
	checkMedia(ctx, songs, "Queen Bohemian Rhapsody")

	// 3. Model backend
	fmt.Println("\n[LLM] Checking model backend...")
	provider, err := llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		fail("llm provider", err)
	} else {
		checkLLM(ctx, provider)
	}

	fmt.Println("----------------------------------------")
	if failed {
		fmt.Println("❌ Health Check Completed with failures.")
		os.Exit(1)
	}
	fmt.Println("✅ Health Check Completed.")
}

func fail(name string, err error) {
	failed = true
	fmt.Printf("❌ FAIL: %-25s - Error: %v\n", name, err)
}

func checkSearch(ctx context.Context, s search.Searcher, query string) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	start := time.Now()
	results, err := s.Search(ctx, query, 3)
	duration := time.Since(start)

	switch {
	case err != nil:
		fail(s.Name(), err)
	case len(results) == 0:
		fmt.Printf("⚠️ WARN: %-25s - OK but 0 results\n", s.Name())
	default:
		fmt.Printf("✅ PASS: %-25s - %d results, first: %q (took %v)\n", s.Name(), len(results), results[0].Title, duration)
	}
}

func checkMedia(ctx context.Context, c *media.Client, query string) {
	start := time.Now()
	songs, err := c.Search(ctx, query)
	if err != nil {
		fail("yt-dlp search", err)
		return
	}
	if len(songs) == 0 {
		fmt.Printf("⚠️ WARN: %-25s - OK but 0 results\n", "yt-dlp search")
		return
	}
	fmt.Printf("✅ PASS: %-25s - %s by %s (took %v)\n", "yt-dlp search", songs[0].Name, songs[0].ArtistName, time.Since(start))

	start = time.Now()
	if _, err := c.StreamURL(ctx, songs[0].URL); err != nil {
		fail("yt-dlp stream", err)
		return
	}
	fmt.Printf("✅ PASS: %-25s - audio stream resolved (took %v)\n", "yt-dlp stream", time.Since(start))
}

func checkLLM(ctx context.Context, p llm.Provider) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	reply, err := p.Chat(ctx, []llm.Message{llm.UserMessage("Reply with the single word: pong")})
	if err != nil {
		fail(p.Name(), err)
		return
	}
	fmt.Printf("✅ PASS: %-25s - replied %q (took %v)\n", p.Name(), strings.TrimSpace(reply), time.Since(start))
}
