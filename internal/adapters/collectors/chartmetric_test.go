package collectors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mverse/brandpulse/internal/domain/model"
)

func chartmetricStubServer(t *testing.T, authOK, artistFound, hasSignals bool) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token":
			if !authOK {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"token": "jwt-stub", "expires_in": 3600})
		case "/api/search":
			if !artistFound {
				json.NewEncoder(w).Encode(map[string]any{"obj": map[string]any{"artists": []any{}}})
				return
			}
			artist := map[string]any{"id": 4444, "name": "Test Artist"}
			if hasSignals {
				artist["sp_monthly_listeners"] = 12_000_000
				artist["cm_artist_score"] = 78.5
			}
			json.NewEncoder(w).Encode(map[string]any{
				"obj": map[string]any{"artists": []any{artist}},
			})
		case "/api/artist/4444":
			obj := map[string]any{}
			if hasSignals {
				obj["cm_artist_rank"] = 120
			}
			json.NewEncoder(w).Encode(map[string]any{"obj": obj})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChartmetricCollect(t *testing.T) {
	Convey("Given a Chartmetric collector", t, func() {
		ctx := context.Background()

		Convey("When the artist resolves with full signals", func() {
			srv := chartmetricStubServer(t, true, true, true)
			cm := NewChartmetric("refresh", WithChartmetricBaseURL(srv.URL))
			out := cm.Collect(ctx, "Test Artist")

			So(out.Status, ShouldEqual, model.StatusSuccess)
			So(out.ArtistID, ShouldEqual, 4444)
			So(out.ArtistStats, ShouldNotBeNil)
			So(out.ArtistStats.ArtistRank, ShouldEqual, 120)
			So(out.ArtistStats.ArtistScore, ShouldAlmostEqual, 78.5, 1e-9)
			So(out.ArtistStats.SpMonthlyListeners, ShouldEqual, 12_000_000)
		})

		Convey("An artist with no signals at all degrades to partial", func() {
			srv := chartmetricStubServer(t, true, true, false)
			cm := NewChartmetric("refresh", WithChartmetricBaseURL(srv.URL))
			out := cm.Collect(ctx, "Test Artist")

			So(out.Status, ShouldEqual, model.StatusPartial)
			So(out.ArtistStats, ShouldNotBeNil)
		})

		Convey("When no artist matches the search", func() {
			srv := chartmetricStubServer(t, true, false, false)
			cm := NewChartmetric("refresh", WithChartmetricBaseURL(srv.URL))
			out := cm.Collect(ctx, "Nobody Here")

			So(out.Failed(), ShouldBeTrue)
			So(out.ErrorMessage, ShouldEqual, "Could not find Chartmetric artist for Nobody Here")
		})

		Convey("When the refresh token is rejected", func() {
			srv := chartmetricStubServer(t, false, true, true)
			cm := NewChartmetric("stale-refresh", WithChartmetricBaseURL(srv.URL))
			out := cm.Collect(ctx, "Test Artist")

			So(out.Failed(), ShouldBeTrue)
			So(out.ErrorMessage, ShouldEqual, "Could not authenticate with Chartmetric API")
		})

		Convey("The exchanged JWT is cached across collections", func() {
			var tokenCalls int
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/api/token":
					tokenCalls++
					json.NewEncoder(w).Encode(map[string]any{"token": "jwt", "expires_in": 3600})
				case "/api/search":
					json.NewEncoder(w).Encode(map[string]any{
						"obj": map[string]any{"artists": []any{
							map[string]any{"id": 1, "name": "A", "cm_artist_score": 50.0},
						}},
					})
				default:
					json.NewEncoder(w).Encode(map[string]any{"obj": map[string]any{}})
				}
			}))
			defer srv.Close()

			cm := NewChartmetric("refresh", WithChartmetricBaseURL(srv.URL))
			cm.Collect(ctx, "A")
			cm.Collect(ctx, "A")

			So(tokenCalls, ShouldEqual, 1)
		})
	})
}
