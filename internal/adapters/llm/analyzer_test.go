package llm

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/time/rate"

	"github.com/mverse/brandpulse/internal/domain/model"
	"github.com/mverse/brandpulse/internal/domain/sentiment"
	"github.com/mverse/brandpulse/internal/domain/types"
	"github.com/mverse/brandpulse/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeChatModel struct {
	replies []string
	errs    []error
	calls   int
}

func (f *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	reply := ""
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	return &schema.Message{Role: schema.Assistant, Content: reply}, nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func fastLimiter() AnalyzerOption {
	return WithRateLimiter(rate.NewLimiter(rate.Inf, 1))
}

func someArticles(n int) []model.NewsArticle {
	out := make([]model.NewsArticle, n)
	for i := range out {
		out[i] = model.NewsArticle{
			Title:  "Artist announces world tour",
			URL:    "https://news.example/tour",
			Source: "news.example",
			Age:    "3 days ago",
		}
	}
	return out
}

func TestAnalyze(t *testing.T) {
	Convey("Given a sentiment analyzer", t, func() {
		ctx := context.Background()

		Convey("With no articles it skips the model entirely", func() {
			fake := &fakeChatModel{}
			a := NewAnalyzer(fake, fastLimiter())
			agg := a.Analyze(ctx, "Test Artist", nil)

			So(fake.calls, ShouldEqual, 0)
			So(agg.OverallCategory, ShouldEqual, sentiment.Neutral)
			So(agg.Confidence, ShouldAlmostEqual, 0.3, 1e-9)
			So(agg.SampleSize, ShouldEqual, 0)
		})

		Convey("A well-formed JSON reply is parsed into the aggregate", func() {
			fake := &fakeChatModel{replies: []string{`{
				"overall_sentiment": "positive",
				"sentiment_score": 0.6,
				"confidence": 0.85,
				"key_themes": ["tour", "new album"],
				"summary": "Coverage is upbeat around the tour announcement.",
				"brand_safety_concerns": []
			}`}}
			a := NewAnalyzer(fake, fastLimiter())
			agg := a.Analyze(ctx, "Test Artist", someArticles(4))

			So(agg.OverallCategory, ShouldEqual, sentiment.Positive)
			So(agg.OverallScore, ShouldAlmostEqual, 0.6, 1e-9)
			So(agg.Confidence, ShouldAlmostEqual, 0.85, 1e-9)
			So(agg.SampleSize, ShouldEqual, 4)
			So(agg.KeyThemes, ShouldResemble, []string{"tour", "new album"})
			So(agg.BrandSafetyConcerns, ShouldBeEmpty)
		})

		Convey("Markdown fences around the JSON are stripped", func() {
			fake := &fakeChatModel{replies: []string{
				"```json\n{\"overall_sentiment\": \"negative\", \"sentiment_score\": -0.4, \"confidence\": 0.7, \"summary\": \"s\"}\n```",
			}}
			a := NewAnalyzer(fake, fastLimiter())
			agg := a.Analyze(ctx, "Test Artist", someArticles(2))

			So(agg.OverallCategory, ShouldEqual, sentiment.Negative)
			So(agg.OverallScore, ShouldAlmostEqual, -0.4, 1e-9)
		})

		Convey("Out-of-range model values are clamped", func() {
			fake := &fakeChatModel{replies: []string{
				`{"overall_sentiment": "very_positive", "sentiment_score": 3.2, "confidence": 1.7, "summary": "s"}`,
			}}
			a := NewAnalyzer(fake, fastLimiter())
			agg := a.Analyze(ctx, "Test Artist", someArticles(1))

			So(agg.OverallScore, ShouldEqual, 1.0)
			So(agg.Confidence, ShouldEqual, 1.0)
		})

		Convey("A non-JSON reply degrades to neutral at half confidence", func() {
			fake := &fakeChatModel{replies: []string{"Sorry, I cannot help with that."}}
			a := NewAnalyzer(fake, fastLimiter())
			agg := a.Analyze(ctx, "Test Artist", someArticles(3))

			So(agg.OverallCategory, ShouldEqual, sentiment.Neutral)
			So(agg.Confidence, ShouldAlmostEqual, 0.5, 1e-9)
			So(agg.SampleSize, ShouldEqual, 3)
		})

		Convey("A transport error degrades to neutral at low confidence", func() {
			fake := &fakeChatModel{errs: []error{errors.New("connection refused")}}
			a := NewAnalyzer(fake, fastLimiter())
			agg := a.Analyze(ctx, "Test Artist", someArticles(3))

			So(agg.OverallCategory, ShouldEqual, sentiment.Neutral)
			So(agg.Confidence, ShouldAlmostEqual, 0.2, 1e-9)
			So(agg.Summary, ShouldContainSubstring, "connection refused")
		})

		Convey("The article sample is capped before prompting", func() {
			fake := &fakeChatModel{replies: []string{
				`{"overall_sentiment": "neutral", "sentiment_score": 0, "confidence": 0.6, "summary": "s"}`,
			}}
			a := NewAnalyzer(fake, fastLimiter(), WithMaxArticles(5))
			agg := a.Analyze(ctx, "Test Artist", someArticles(20))

			So(agg.SampleSize, ShouldEqual, 5)
		})
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given a summary request", t, func() {
		ctx := context.Background()
		breakdown := types.ScoreBreakdown{
			SpotifyScore: types.ScoreComponent{Name: "Spotify Performance", NormalizedScore: 82, Weight: 0.35, Status: "success"},
			YouTubeScore: types.ScoreComponent{Name: "YouTube Presence", NormalizedScore: 64, Weight: 0.30, Status: "success"},
		}

		Convey("The model reply is returned trimmed", func() {
			fake := &fakeChatModel{replies: []string{"  A strong streaming-first brand.  "}}
			a := NewAnalyzer(fake, fastLimiter())
			out := a.Summarize(ctx, "Test Artist", breakdown, 74.5, "B")

			So(out, ShouldEqual, "A strong streaming-first brand.")
		})

		Convey("A model failure falls back to the deterministic template", func() {
			fake := &fakeChatModel{errs: []error{errors.New("boom")}}
			a := NewAnalyzer(fake, fastLimiter())
			out := a.Summarize(ctx, "Test Artist", breakdown, 74.5, "B")

			So(out, ShouldContainSubstring, "Test Artist")
			So(out, ShouldContainSubstring, "74.5/100")
			So(out, ShouldContainSubstring, "strong streaming presence")
		})
	})
}
