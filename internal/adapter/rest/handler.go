package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"songbird/internal/core"
	"songbird/internal/media"
	"songbird/internal/model"
	"songbird/internal/similarity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Songs is the video platform lookup behind /search, /stream and /search-songs/.
type Songs interface {
	Search(ctx context.Context, query string) ([]media.Song, error)
	SearchMany(ctx context.Context, queries []string) ([]media.Song, error)
	StreamURL(ctx context.Context, videoURL string) (string, error)
}

type Recommender interface {
	Recommend(ctx context.Context, songTitle string) []string
}

type SimilarSongs interface {
	Recommend(title string, k int) ([]string, error)
}

type Adapter struct {
	Dispatcher  *core.Dispatcher
	Songs       Songs
	Recommender Recommender
	Similar     SimilarSongs // nil when no catalog is configured
	Logger      *zap.Logger
	Port        string
}

func NewAdapter(port string, dispatcher *core.Dispatcher, songs Songs, recommender Recommender, logger *zap.Logger) *Adapter {
	return &Adapter{
		Dispatcher:  dispatcher,
		Songs:       songs,
		Recommender: recommender,
		Logger:      logger,
		Port:        port,
	}
}

type ChatRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Text     string `json:"text" binding:"required"`
	ChatID   string `json:"chat_id"`
	Platform string `json:"platform"` // optional, defaults to "api"
}

type ChatResponse struct {
	Response string `json:"response"`
}

type SearchRequest struct {
	Queries []string `json:"queries" binding:"required"`
}

const defaultSimilarCount = 10

func (a *Adapter) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), a.requestLogger())

	r.GET("/search", a.handleSearch)
	r.GET("/stream", a.handleStream)
	r.GET("/recommendations", a.handleRecommendations)
	r.GET("/recommendations/similar", a.handleSimilar)
	r.POST("/search-songs/", a.handleSearchSongs)
	r.POST("/api/v1/chat", a.handleChat)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (a *Adapter) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + a.Port,
		Handler: a.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("REST server shutdown failed", zap.Error(err))
		}
	}()

	a.Logger.Info("Starting REST API server", zap.String("port", a.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *Adapter) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.Logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func abort(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func (a *Adapter) handleSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		abort(c, http.StatusBadRequest, "A search query is required.")
		return
	}

	songs, err := a.Songs.Search(c.Request.Context(), query)
	switch {
	case errors.Is(err, media.ErrDownload):
		abort(c, http.StatusServiceUnavailable, "Service is unable to fetch data from YouTube. This may be due to network issues or API changes. Please try again later.")
		return
	case err != nil:
		a.Logger.Error("Search failed", zap.String("query", query), zap.Error(err))
		abort(c, http.StatusInternalServerError, "An internal server error occurred.")
		return
	}
	c.JSON(http.StatusOK, songs)
}

func (a *Adapter) handleStream(c *gin.Context) {
	videoURL := strings.TrimSpace(c.Query("url"))
	if videoURL == "" {
		abort(c, http.StatusBadRequest, "A YouTube video URL is required.")
		return
	}
	if err := media.ValidateVideoURL(videoURL); err != nil {
		abort(c, http.StatusBadRequest, "The video URL must be an http or https URL.")
		return
	}

	streamURL, err := a.Songs.StreamURL(c.Request.Context(), videoURL)
	switch {
	case errors.Is(err, media.ErrInvalidURL):
		abort(c, http.StatusBadRequest, "The video URL must be an http or https URL.")
		return
	case errors.Is(err, media.ErrNoAudioStream):
		abort(c, http.StatusNotFound, "Could not find a valid audio-only stream.")
		return
	case errors.Is(err, media.ErrDownload):
		abort(c, http.StatusServiceUnavailable, "Failed to get stream URL from YouTube.")
		return
	case err != nil:
		a.Logger.Error("Stream lookup failed", zap.String("url", videoURL), zap.Error(err))
		abort(c, http.StatusInternalServerError, "An internal server error occurred while fetching the stream.")
		return
	}
	c.JSON(http.StatusOK, media.StreamInfo{StreamURL: streamURL})
}

func (a *Adapter) handleRecommendations(c *gin.Context) {
	song := strings.TrimSpace(c.Query("song"))
	if song == "" {
		abort(c, http.StatusBadRequest, "A song title is required.")
		return
	}

	recs := a.Recommender.Recommend(c.Request.Context(), song)
	if len(recs) == 0 {
		abort(c, http.StatusNotFound, "Could not find recommendations")
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (a *Adapter) handleSimilar(c *gin.Context) {
	if a.Similar == nil {
		abort(c, http.StatusNotFound, "Similarity catalog is not configured.")
		return
	}
	song := strings.TrimSpace(c.Query("song"))
	if song == "" {
		abort(c, http.StatusBadRequest, "A song title is required.")
		return
	}
	k := defaultSimilarCount
	if raw := c.Query("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			abort(c, http.StatusBadRequest, "k must be a positive integer.")
			return
		}
		k = n
	}

	recs, err := a.Similar.Recommend(song, k)
	switch {
	case errors.Is(err, similarity.ErrUnknownSong):
		abort(c, http.StatusNotFound, "Could not find recommendations")
		return
	case err != nil:
		a.Logger.Error("Similarity lookup failed", zap.String("song", song), zap.Error(err))
		abort(c, http.StatusInternalServerError, "An internal server error occurred.")
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (a *Adapter) handleSearchSongs(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	songs, err := a.Songs.SearchMany(c.Request.Context(), req.Queries)
	if err != nil {
		a.Logger.Error("Batch search failed", zap.Int("queries", len(req.Queries)), zap.Error(err))
		abort(c, http.StatusInternalServerError, "An internal error occurred: "+err.Error())
		return
	}
	if songs == nil {
		songs = []media.Song{}
	}
	c.JSON(http.StatusOK, songs)
}

func (a *Adapter) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	platform := req.Platform
	if platform == "" {
		platform = "api"
	}

	msg := &model.InternalMessage{
		Platform:    platform,
		ChatType:    "private",
		ChatID:      req.ChatID,
		UserID:      req.UserID,
		Text:        req.Text,
		Timestamp:   time.Now().Unix(),
		IsMentioned: true,
	}

	respText, err := a.Dispatcher.Dispatch(c.Request.Context(), msg)
	if err != nil {
		a.Logger.Error("Dispatch failed", zap.Error(err))
		abort(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Response: respText,
	})
}
