// Package llm runs the sentiment analysis and narrative summary calls
// against an OpenAI-compatible chat model.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/mverse/brandpulse/internal/domain/model"
	"github.com/mverse/brandpulse/internal/domain/sentiment"
	"github.com/mverse/brandpulse/internal/domain/types"
	"github.com/mverse/brandpulse/pkg/logger"
	"github.com/mverse/brandpulse/pkg/metrics"
)

const (
	defaultMaxArticles = 10

	maxGenerateRetries = 3
	retryBaseDelay     = 2 * time.Second
)

// Analyzer wraps a chat model with rate limiting and the prompt plumbing for
// sentiment analysis and score summaries.
type Analyzer struct {
	chatModel   einomodel.BaseChatModel
	limiter     *rate.Limiter
	maxArticles int
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithRateLimiter sets the request limiter shared across LLM calls.
func WithRateLimiter(l *rate.Limiter) AnalyzerOption {
	return func(a *Analyzer) { a.limiter = l }
}

// WithMaxArticles caps how many news articles feed a sentiment prompt.
func WithMaxArticles(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxArticles = n
		}
	}
}

// NewAnalyzer creates an Analyzer around the given chat model.
func NewAnalyzer(cm einomodel.BaseChatModel, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		chatModel:   cm,
		limiter:     rate.NewLimiter(rate.Limit(1), 5),
		maxArticles: defaultMaxArticles,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type sentimentPayload struct {
	OverallSentiment    string   `json:"overall_sentiment"`
	SentimentScore      float64  `json:"sentiment_score"`
	Confidence          float64  `json:"confidence"`
	KeyThemes           []string `json:"key_themes"`
	Summary             string   `json:"summary"`
	BrandSafetyConcerns []string `json:"brand_safety_concerns"`
}

const sentimentSystemPrompt = "You are a music industry brand analyst. Respond with a single JSON object and nothing else."

const sentimentPromptTemplate = `Analyze the sentiment of recent news coverage for the music artist %q.

Articles:
%s

Return strictly this JSON shape, no markdown fences:
{
  "overall_sentiment": "very_negative" | "negative" | "neutral" | "positive" | "very_positive",
  "sentiment_score": <float between -1.0 and 1.0>,
  "confidence": <float between 0.0 and 1.0>,
  "key_themes": ["..."],
  "summary": "<2-3 sentence summary of the coverage>",
  "brand_safety_concerns": ["<any controversies or reputational risks, empty if none>"]
}`

// Analyze runs sentiment analysis over the artist's recent news coverage.
// With no articles it returns a low-confidence neutral result without
// spending an LLM call. Model failures never propagate as errors; they
// degrade the confidence instead.
func (a *Analyzer) Analyze(ctx context.Context, artistName string, articles []model.NewsArticle) sentiment.Aggregated {
	if len(articles) == 0 {
		return sentiment.Aggregated{
			OverallCategory: sentiment.Neutral,
			Confidence:      0.3,
			Summary:         fmt.Sprintf("No recent news coverage found for %s", artistName),
		}
	}
	if len(articles) > a.maxArticles {
		articles = articles[:a.maxArticles]
	}

	var sb strings.Builder
	for i, art := range articles {
		fmt.Fprintf(&sb, "%d. %s", i+1, art.Title)
		if art.Description != "" {
			fmt.Fprintf(&sb, " - %s", art.Description)
		}
		if art.Age != "" {
			fmt.Fprintf(&sb, " (%s)", art.Age)
		}
		sb.WriteByte('\n')
	}
	prompt := fmt.Sprintf(sentimentPromptTemplate, artistName, sb.String())

	start := time.Now()
	raw, err := a.generate(ctx, sentimentSystemPrompt, prompt)
	metrics.RecordLLMLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordLLMRequest("sentiment", "error")
		logger.Get().Warn(ctx, "sentiment analysis call failed",
			logger.String("artist", artistName), logger.Error(err))
		return sentiment.Aggregated{
			OverallCategory: sentiment.Neutral,
			Confidence:      0.2,
			SampleSize:      len(articles),
			Summary:         fmt.Sprintf("Sentiment analysis unavailable: %v", err),
		}
	}

	var payload sentimentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		metrics.RecordLLMRequest("sentiment", "parse_error")
		logger.Get().Warn(ctx, "sentiment response was not valid JSON",
			logger.String("artist", artistName), logger.Error(err))
		return sentiment.Aggregated{
			OverallCategory: sentiment.Neutral,
			Confidence:      0.5,
			SampleSize:      len(articles),
			Summary:         "Sentiment analysis completed with limited confidence",
		}
	}

	metrics.RecordLLMRequest("sentiment", "ok")
	return sentiment.Aggregated{
		OverallCategory:     sentiment.ParseCategory(payload.OverallSentiment),
		OverallScore:        clamp(payload.SentimentScore, -1, 1),
		Confidence:          clamp(payload.Confidence, 0, 1),
		SampleSize:          len(articles),
		KeyThemes:           payload.KeyThemes,
		Summary:             payload.Summary,
		BrandSafetyConcerns: payload.BrandSafetyConcerns,
	}
}

const summarySystemPrompt = "You are a music industry brand analyst. Write concise plain prose, no markdown."

const summaryPromptTemplate = `Write a 2-3 sentence executive summary of the brand value of music artist %q.

Final score: %.1f/100 (grade %s)
Component scores:
%s

Mention the strongest and weakest areas. Do not repeat the raw numbers for every component.`

// Summarize produces a short narrative for a computed score. When the model
// is unavailable it falls back to a deterministic template so detailed
// responses always carry a summary.
func (a *Analyzer) Summarize(ctx context.Context, artistName string, breakdown types.ScoreBreakdown, finalScore float64, grade string) string {
	var sb strings.Builder
	for _, c := range breakdown.Components() {
		fmt.Fprintf(&sb, "- %s: %.1f (weight %.0f%%, %s)\n",
			c.Name, c.NormalizedScore, c.Weight*100, c.Status)
	}
	prompt := fmt.Sprintf(summaryPromptTemplate, artistName, finalScore, grade, sb.String())

	start := time.Now()
	out, err := a.generate(ctx, summarySystemPrompt, prompt)
	metrics.RecordLLMLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordLLMRequest("summary", "error")
		logger.Get().Warn(ctx, "summary call failed",
			logger.String("artist", artistName), logger.Error(err))
		return fallbackSummary(artistName, breakdown, finalScore, grade)
	}
	metrics.RecordLLMRequest("summary", "ok")
	return strings.TrimSpace(out)
}

func fallbackSummary(artistName string, breakdown types.ScoreBreakdown, finalScore float64, grade string) string {
	presence := "moderate"
	if breakdown.SpotifyScore.NormalizedScore > 70 {
		presence = "strong"
	}
	return fmt.Sprintf("%s holds a brand value score of %.1f/100 (grade %s) with %s streaming presence.",
		artistName, finalScore, grade, presence)
}

// generate performs one rate-limited chat completion, retrying on rate-limit
// rejections with exponential backoff and stripping markdown fences from the
// response.
func (a *Analyzer) generate(ctx context.Context, system, user string) (string, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: system},
		{Role: schema.User, Content: user},
	}

	var lastErr error
	for i := 0; i <= maxGenerateRetries; i++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", err
		}

		resp, err := a.chatModel.Generate(ctx, messages)
		if err != nil {
			lastErr = err
			if isRateLimited(err) && i < maxGenerateRetries {
				select {
				case <-time.After(retryBaseDelay * time.Duration(1<<i)):
					continue
				case <-ctx.Done():
					return "", ctx.Err()
				}
			}
			return "", err
		}

		content := strings.TrimSpace(resp.Content)
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		return strings.TrimSpace(content), nil
	}
	return "", lastErr
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
