package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"commuterhythm/internal/config"
	"commuterhythm/internal/models"
)

// RecommendationService turns a theme into one issue worth of songs
type RecommendationService interface {
	FetchRecommendations(ctx context.Context, theme string) (*models.RecommendationResult, error)
}

const (
	vertexScope         = "https://www.googleapis.com/auth/cloud-platform"
	defaultGeminiURL    = "https://generativelanguage.googleapis.com"
	defaultGeminiModel  = "gemini-3-flash-preview"
	defaultVertexRegion = "us-central1"
)

// GeminiOptions configures the generateContent client
type GeminiOptions struct {
	Backend   config.Backend
	APIKey    string
	Model     string
	BaseURL   string // overrides the backend host, mainly for tests
	Project   string
	Location  string
	Grounding bool
	Timeout   time.Duration

	// TokenSource is used for the vertex backend. When nil, application
	// default credentials are looked up on the first request.
	TokenSource oauth2.TokenSource
}

// geminiService implements RecommendationService against Gemini or Vertex AI
type geminiService struct {
	client      *resty.Client
	opts        GeminiOptions
	curation    func() *config.CurationConfig
	validator   *models.SongValidator
	tokenSource oauth2.TokenSource
	mu          sync.RWMutex
}

// NewGeminiService creates a new recommendation client. curation supplies the
// current editorial settings on every request so reloads take effect.
func NewGeminiService(opts GeminiOptions, curation func() *config.CurationConfig) RecommendationService {
	if opts.Backend == "" {
		opts.Backend = config.BackendGemini
	}
	if opts.Model == "" {
		opts.Model = defaultGeminiModel
	}
	if opts.Location == "" {
		opts.Location = defaultVertexRegion
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if curation == nil {
		curation = config.DefaultCurationConfig
	}

	// No client-level retries: a failed issue is retried by the reader
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &geminiService{
		client:      client,
		opts:        opts,
		curation:    curation,
		validator:   models.NewSongValidator(),
		tokenSource: opts.TokenSource,
	}
}

// NewGeminiServiceFromConfig wires the client from environment configuration
func NewGeminiServiceFromConfig(cfg *config.Config) RecommendationService {
	opts := GeminiOptions{
		Backend:   cfg.GeminiBackend,
		APIKey:    cfg.GeminiAPIKey,
		Model:     cfg.GeminiModel,
		Project:   cfg.VertexProject,
		Location:  cfg.VertexLocation,
		Grounding: cfg.GeminiGrounding,
		Timeout:   cfg.GeminiTimeout,
	}
	if cfg.GeminiBackend == config.BackendGemini {
		opts.BaseURL = cfg.GeminiBaseURL
	}
	return NewGeminiService(opts, config.GetCurationConfig)
}

// FetchRecommendations asks the model for one issue and validates the answer
func (s *geminiService) FetchRecommendations(ctx context.Context, theme string) (*models.RecommendationResult, error) {
	if err := s.checkCredentials(); err != nil {
		return nil, err
	}

	curation := s.curation()
	body := s.buildRequest(theme, curation)

	req := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&GenerateContentResponse{}).
		SetError(&GeminiErrorResponse{})

	if err := s.authorize(ctx, req); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := req.Post(s.endpoint())
	if err != nil {
		return nil, &ServiceError{
			Backend:   string(s.opts.Backend),
			Operation: "generate_content",
			Message:   "request failed",
			Err:       err,
		}
	}

	if resp.StatusCode() != http.StatusOK {
		msg := fmt.Sprintf("API returned status %d", resp.StatusCode())
		if apiErr, ok := resp.Error().(*GeminiErrorResponse); ok && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return nil, &ServiceError{
			Backend:    string(s.opts.Backend),
			Operation:  "generate_content",
			Message:    msg,
			StatusCode: resp.StatusCode(),
		}
	}

	result, err := s.parseResponse(resp.Result().(*GenerateContentResponse))
	if err != nil {
		return nil, err
	}

	if !matchesCuration(result, curation) {
		slog.Warn("recommendations do not match requested mix",
			"theme", theme,
			"songs", len(result.Recommendations),
			"korean", result.OriginCounts()[models.OriginKorean],
			"want_songs", curation.SongCount,
			"want_korean", curation.KoreanCount)
	}

	slog.Info("issue curated",
		"backend", s.opts.Backend,
		"model", s.opts.Model,
		"songs", len(result.Recommendations),
		"sources", len(result.Sources),
		"duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

func (s *geminiService) checkCredentials() error {
	switch s.opts.Backend {
	case config.BackendVertex:
		if s.opts.Project == "" {
			return &ConfigurationError{Setting: "VERTEX_PROJECT", Message: "is not set"}
		}
	default:
		if s.opts.APIKey == "" {
			return &ConfigurationError{Setting: "GEMINI_API_KEY", Message: "is not set"}
		}
	}
	return nil
}

func (s *geminiService) buildRequest(theme string, curation *config.CurationConfig) *GenerateContentRequest {
	req := &GenerateContentRequest{
		Contents: []GeminiContent{{
			Role:  "user",
			Parts: []GeminiPart{{Text: BuildPrompt(theme, curation)}},
		}},
		GenerationConfig: &GeminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   RecommendationSchema(curation.SongCount),
		},
	}
	if s.opts.Grounding {
		req.Tools = []GeminiTool{{GoogleSearch: &struct{}{}}}
	}
	return req
}

func (s *geminiService) endpoint() string {
	if s.opts.Backend == config.BackendVertex {
		base := s.opts.BaseURL
		if base == "" {
			base = vertexHost(s.opts.Location)
		}
		return fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
			strings.TrimRight(base, "/"), s.opts.Project, s.opts.Location, s.opts.Model)
	}

	base := s.opts.BaseURL
	if base == "" {
		base = defaultGeminiURL
	}
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(base, "/"), s.opts.Model)
}

func vertexHost(location string) string {
	if location == "global" {
		return "https://aiplatform.googleapis.com"
	}
	return "https://" + location + "-aiplatform.googleapis.com"
}

// authorize attaches the API key or a bearer token depending on backend
func (s *geminiService) authorize(ctx context.Context, req *resty.Request) error {
	if s.opts.Backend != config.BackendVertex {
		req.SetHeader("x-goog-api-key", s.opts.APIKey)
		return nil
	}

	ts, err := s.ensureTokenSource(ctx)
	if err != nil {
		return err
	}
	token, err := ts.Token()
	if err != nil {
		return &ServiceError{
			Backend:   string(s.opts.Backend),
			Operation: "authenticate",
			Message:   "failed to obtain access token",
			Err:       err,
		}
	}
	req.SetAuthToken(token.AccessToken)
	return nil
}

// ensureTokenSource resolves application default credentials once
func (s *geminiService) ensureTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	s.mu.RLock()
	ts := s.tokenSource
	s.mu.RUnlock()
	if ts != nil {
		return ts, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if s.tokenSource != nil {
		return s.tokenSource, nil
	}

	// The token source outlives this request
	creds, err := google.FindDefaultCredentials(context.WithoutCancel(ctx), vertexScope)
	if err != nil {
		return nil, &ConfigurationError{
			Setting: "GOOGLE_APPLICATION_CREDENTIALS",
			Message: "could not find default credentials",
			Err:     err,
		}
	}
	s.tokenSource = oauth2.ReuseTokenSource(nil, creds.TokenSource)
	return s.tokenSource, nil
}

func (s *geminiService) parseResponse(resp *GenerateContentResponse) (*models.RecommendationResult, error) {
	fail := func(msg string, err error) error {
		return &ServiceError{
			Backend:   string(s.opts.Backend),
			Operation: "parse_response",
			Message:   msg,
			Err:       err,
		}
	}

	if resp == nil {
		return nil, fail("empty response", nil)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fail("prompt blocked: "+resp.PromptFeedback.BlockReason, nil)
	}
	if len(resp.Candidates) == 0 {
		return nil, fail("response has no candidates", nil)
	}

	candidate := resp.Candidates[0]
	text := strings.TrimSpace(candidateText(candidate))
	if text == "" {
		reason := "response has no text"
		if candidate.FinishReason != "" {
			reason += " (finish reason " + candidate.FinishReason + ")"
		}
		return nil, fail(reason, nil)
	}

	var payload recommendationPayload
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &payload); err != nil {
		return nil, fail("response is not valid JSON", err)
	}
	if payload.Recommendations == nil {
		return nil, fail("response is missing recommendations", nil)
	}

	songs := normalizeSongs(*payload.Recommendations)
	if err := s.validator.ValidateSongs(songs); err != nil {
		return nil, fail("response failed schema validation", err)
	}

	return &models.RecommendationResult{
		Recommendations: songs,
		Sources:         extractSources(candidate.GroundingMetadata),
	}, nil
}

// candidateText joins the answer parts, skipping thought summaries
func candidateText(c GeminiCandidate) string {
	var b strings.Builder
	for _, part := range c.Content.Parts {
		if part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

// stripCodeFence removes a surrounding ``` or ```json fence, on one line or several
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimSpace(strings.TrimPrefix(text, "```"))
	text = strings.TrimSpace(strings.TrimSuffix(text, "```"))

	// language tag, e.g. ```json
	tag := 0
	for tag < len(text) && isASCIILetter(text[tag]) {
		tag++
	}
	return strings.TrimSpace(text[tag:])
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// normalizeSongs trims surrounding whitespace from every field
func normalizeSongs(songs []models.Song) []models.Song {
	out := make([]models.Song, len(songs))
	for i, song := range songs {
		song.Title = strings.TrimSpace(song.Title)
		song.Artist = strings.TrimSpace(song.Artist)
		song.Reason = strings.TrimSpace(song.Reason)
		song.Origin = models.Origin(strings.TrimSpace(string(song.Origin)))
		song.VideoID = strings.TrimSpace(song.VideoID)
		out[i] = song
	}
	return out
}

// extractSources keeps web citations with a uri, first occurrence wins
func extractSources(meta *GeminiGroundingMetadata) []models.Source {
	if meta == nil {
		return nil
	}

	var sources []models.Source
	seen := make(map[string]bool)
	for _, chunk := range meta.GroundingChunks {
		if chunk.Web == nil {
			continue
		}
		source := models.NewSource(chunk.Web.Title, chunk.Web.URI)
		if source.URI == "" || seen[source.URI] {
			continue
		}
		seen[source.URI] = true
		sources = append(sources, source)
	}
	return sources
}

func matchesCuration(result *models.RecommendationResult, curation *config.CurationConfig) bool {
	counts := result.OriginCounts()
	return len(result.Recommendations) == curation.SongCount &&
		counts[models.OriginKorean] == curation.KoreanCount &&
		counts[models.OriginInternational] == curation.InternationalCount()
}
