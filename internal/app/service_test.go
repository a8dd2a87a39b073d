package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mverse/brandpulse/internal/adapters/cache"
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

type fakeSpotify struct {
	result model.SpotifyMetrics
	calls  atomic.Int32
	panics bool
}

func (f *fakeSpotify) Collect(_ context.Context, _ string) model.SpotifyMetrics {
	f.calls.Add(1)
	if f.panics {
		panic("spotify fake exploded")
	}
	return f.result
}

type fakeYouTube struct {
	result model.YouTubeMetrics
	block  bool
}

func (f *fakeYouTube) Collect(ctx context.Context, artistName string) model.YouTubeMetrics {
	if f.block {
		<-ctx.Done()
		return model.FailedYouTube("youtube collection failed: " + ctx.Err().Error())
	}
	return f.result
}

type fakeChartmetric struct{ result model.ChartmetricMetrics }

func (f *fakeChartmetric) Collect(_ context.Context, _ string) model.ChartmetricMetrics {
	return f.result
}

type fakeBrave struct{ result model.BraveSearchMetrics }

func (f *fakeBrave) Collect(_ context.Context, _ string) model.BraveSearchMetrics {
	return f.result
}

type fakeAnalyzer struct {
	agg            sentiment.Aggregated
	summary        string
	summarizeCalls atomic.Int32
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string, articles []model.NewsArticle) sentiment.Aggregated {
	out := f.agg
	out.SampleSize = len(articles)
	return out
}

func (f *fakeAnalyzer) Summarize(_ context.Context, _ string, _ types.ScoreBreakdown, _ float64, _ string) string {
	f.summarizeCalls.Add(1)
	return f.summary
}

func healthyFixtures() (*fakeSpotify, *fakeYouTube, *fakeChartmetric, *fakeBrave, *fakeAnalyzer) {
	now := time.Now().UTC()
	ok := model.CollectorResult{Status: model.StatusSuccess, CollectedAt: now}

	sp := &fakeSpotify{result: model.SpotifyMetrics{
		CollectorResult: ok,
		ArtistStats:     &model.SpotifyArtistStats{Followers: 2_000_000, Popularity: 80},
	}}
	yt := &fakeYouTube{result: model.YouTubeMetrics{
		CollectorResult: ok,
		ChannelStats: &model.YouTubeChannelStats{
			SubscriberCount:  3_000_000,
			AvgViewsPerVideo: 1_500_000,
			EngagementRate:   20,
		},
	}}
	cm := &fakeChartmetric{result: model.ChartmetricMetrics{
		CollectorResult: ok,
		ArtistStats:     &model.ChartmetricStats{ArtistRank: 150, ArtistScore: 75, SpMonthlyListeners: 10_000_000},
	}}
	br := &fakeBrave{result: model.BraveSearchMetrics{
		CollectorResult: ok,
		NewsArticles: []model.NewsArticle{
			{Title: "Tour announced", URL: "https://n.example/1", Source: "n.example"},
			{Title: "Album review", URL: "https://n.example/2", Source: "n.example"},
		},
		TotalResultsCount: 18,
		RecentNewsCount:   2,
	}}
	an := &fakeAnalyzer{
		agg: sentiment.Aggregated{
			OverallCategory: sentiment.Positive,
			OverallScore:    0.5,
			Confidence:      0.8,
			Summary:         "Coverage is positive.",
		},
		summary: "A streaming-first brand with broad reach.",
	}
	return sp, yt, cm, br, an
}

func newTestService(sp SpotifyCollector, yt YouTubeCollector, cm ChartmetricCollector, br BraveCollector, an Analyzer, extra ...Option) *Service {
	opts := append([]Option{
		WithCollectors(sp, yt, cm, br),
		WithAnalyzer(an),
		WithCollectorTimeout(time.Second),
	}, extra...)
	return New(opts...)
}

func TestComputeScore(t *testing.T) {
	Convey("Given a scoring service", t, func() {
		ctx := context.Background()

		Convey("A blank artist name is rejected", func() {
			sp, yt, cm, br, an := healthyFixtures()
			svc := newTestService(sp, yt, cm, br, an)

			_, err := svc.ComputeScore(ctx, "   ", false)
			So(err, ShouldEqual, ErrEmptyArtistName)
			So(sp.calls.Load(), ShouldEqual, 0)
		})

		Convey("All sources healthy produces a full-confidence response", func() {
			sp, yt, cm, br, an := healthyFixtures()
			svc := newTestService(sp, yt, cm, br, an)

			resp, err := svc.ComputeScore(ctx, "Test Artist", true)
			So(err, ShouldBeNil)
			So(resp.ArtistName, ShouldEqual, "Test Artist")
			So(resp.FinalScore, ShouldBeBetween, 0, 100)
			So(resp.ConfidenceLevel, ShouldAlmostEqual, 1.0, 1e-9)
			So(resp.Warnings, ShouldBeEmpty)
			So(resp.Sentiment, ShouldNotBeNil)
			So(resp.Sentiment.SampleSize, ShouldEqual, 2)
			So(resp.AISummary, ShouldEqual, "A streaming-first brand with broad reach.")
			So(an.summarizeCalls.Load(), ShouldEqual, 1)
		})

		Convey("The quick path skips the narrative summary", func() {
			sp, yt, cm, br, an := healthyFixtures()
			svc := newTestService(sp, yt, cm, br, an)

			resp, err := svc.ComputeScore(ctx, "Test Artist", false)
			So(err, ShouldBeNil)
			So(an.summarizeCalls.Load(), ShouldEqual, 0)
			So(resp.AISummary, ShouldEqual, "Coverage is positive.")
		})

		Convey("A panicking collector degrades to a failed bundle", func() {
			sp, yt, cm, br, an := healthyFixtures()
			sp.panics = true
			svc := newTestService(sp, yt, cm, br, an)

			resp, err := svc.ComputeScore(ctx, "Test Artist", false)
			So(err, ShouldBeNil)
			So(resp.Breakdown.SpotifyScore.Status, ShouldEqual, string(model.StatusFailed))
			So(resp.Warnings, ShouldHaveLength, 1)
			So(resp.Warnings[0], ShouldContainSubstring, "internal error")
			So(resp.ConfidenceLevel, ShouldAlmostEqual, 0.65, 1e-9)
		})

		Convey("A collector that exceeds its timeout fails without stalling the request", func() {
			sp, yt, cm, br, an := healthyFixtures()
			yt.block = true
			svc := newTestService(sp, yt, cm, br, an, WithCollectorTimeout(20*time.Millisecond))

			done := make(chan types.ArtistScoreResponse, 1)
			go func() {
				resp, _ := svc.ComputeScore(ctx, "Test Artist", false)
				done <- resp
			}()

			select {
			case resp := <-done:
				So(resp.Breakdown.YouTubeScore.Status, ShouldEqual, string(model.StatusFailed))
			case <-time.After(5 * time.Second):
				t.Fatal("scoring request stalled on a slow collector")
			}
		})

		Convey("Every source failing still yields a graded response", func() {
			sp := &fakeSpotify{result: model.FailedSpotify("spotify collection failed: boom")}
			yt := &fakeYouTube{result: model.FailedYouTube("youtube collection failed: boom")}
			cm := &fakeChartmetric{result: model.FailedChartmetric("chartmetric collection failed: boom")}
			br := &fakeBrave{result: model.FailedBrave("brave_search collection failed: boom")}
			an := &fakeAnalyzer{agg: sentiment.Aggregated{OverallCategory: sentiment.Neutral, Confidence: 0.3}}
			svc := newTestService(sp, yt, cm, br, an)

			resp, err := svc.ComputeScore(ctx, "Unknown Artist", false)
			So(err, ShouldBeNil)
			So(resp.Warnings, ShouldHaveLength, 4)
			So(resp.ConfidenceLevel, ShouldAlmostEqual, 0.07, 1e-9)
			So(resp.ScoreGrade, ShouldNotBeEmpty)
		})

		Convey("Repeated requests over fixed sources agree except for freshness", func() {
			sp, yt, cm, br, an := healthyFixtures()
			svc := newTestService(sp, yt, cm, br, an)

			first, err := svc.ComputeScore(ctx, "Test Artist", true)
			So(err, ShouldBeNil)
			second, err := svc.ComputeScore(ctx, "Test Artist", true)
			So(err, ShouldBeNil)
			So(sp.calls.Load(), ShouldEqual, 2)

			first.DataFreshness = time.Time{}
			second.DataFreshness = time.Time{}
			So(second, ShouldResemble, first)
		})

		Convey("With a cache the second request is served without collecting", func() {
			sp, yt, cm, br, an := healthyFixtures()
			svc := newTestService(sp, yt, cm, br, an, WithCache(cache.New()))

			first, err := svc.ComputeScore(ctx, "Test Artist", false)
			So(err, ShouldBeNil)
			second, err := svc.ComputeScore(ctx, "test artist", false)
			So(err, ShouldBeNil)

			So(sp.calls.Load(), ShouldEqual, 1)
			So(second.FinalScore, ShouldEqual, first.FinalScore)
		})
	})
}

func TestQuickScore(t *testing.T) {
	Convey("QuickScore trims the full response down to score and grade", t, func() {
		sp, yt, cm, br, an := healthyFixtures()
		svc := newTestService(sp, yt, cm, br, an)

		quick, err := svc.QuickScore(context.Background(), "Test Artist")
		So(err, ShouldBeNil)
		So(quick.ArtistName, ShouldEqual, "Test Artist")
		So(quick.Score, ShouldBeBetween, 0, 100)
		So(quick.Grade, ShouldNotBeEmpty)
	})
}
