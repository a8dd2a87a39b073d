package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/mverse/brandpulse/internal/app"
	"github.com/mverse/brandpulse/internal/domain/types"
)

type fakeDeps struct {
	resp       types.ArtistScoreResponse
	quick      types.QuickScore
	err        error
	lastDetail bool
}

func (f *fakeDeps) ComputeScore(_ context.Context, artistName string, includeDetail bool) (types.ArtistScoreResponse, error) {
	f.lastDetail = includeDetail
	if f.err != nil {
		return types.ArtistScoreResponse{}, f.err
	}
	out := f.resp
	out.ArtistName = artistName
	return out, nil
}

func (f *fakeDeps) QuickScore(_ context.Context, artistName string) (types.QuickScore, error) {
	if f.err != nil {
		return types.QuickScore{}, f.err
	}
	out := f.quick
	out.ArtistName = artistName
	return out, nil
}

func newTestMux(deps Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(deps).Register(context.Background(), mux)
	return mux
}

func TestScoreRoutes(t *testing.T) {
	Convey("Given the score routes", t, func() {
		deps := &fakeDeps{
			resp:  types.ArtistScoreResponse{FinalScore: 78.5, ScoreGrade: "B+"},
			quick: types.QuickScore{Score: 78.5, Grade: "B+"},
		}
		mux := newTestMux(deps)

		Convey("GET /api/v1/score/{artist} returns the full response", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/score/Taylor%20Swift", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var got types.ArtistScoreResponse
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got.ArtistName, ShouldEqual, "Taylor Swift")
			So(got.FinalScore, ShouldEqual, 78.5)
			So(deps.lastDetail, ShouldBeTrue)
		})

		Convey("include_breakdown=false disables the detailed response", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/score/Adele?include_breakdown=false", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.lastDetail, ShouldBeFalse)
		})

		Convey("GET /api/v1/score/{artist}/quick returns the trimmed shape", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/score/Adele/quick", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var got types.QuickScore
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got.ArtistName, ShouldEqual, "Adele")
			So(got.Grade, ShouldEqual, "B+")
		})

		Convey("POST /api/v1/score computes from the JSON body", func() {
			body := strings.NewReader(`{"artist_name": "Bad Bunny", "include_breakdown": false}`)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/score", body))

			So(rec.Code, ShouldEqual, http.StatusOK)
			var got types.ArtistScoreResponse
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got.ArtistName, ShouldEqual, "Bad Bunny")
			So(deps.lastDetail, ShouldBeFalse)
		})

		Convey("POST with a malformed body is a 400", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/score", strings.NewReader("{not json")))

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("POST with a blank artist name is a 400", func() {
			body := strings.NewReader(`{"artist_name": "  "}`)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/score", body))

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An empty path segment is a 400", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/score/", nil))

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A service validation error maps to 400", func() {
			deps.err = service.ErrEmptyArtistName
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/score/x", nil))

			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Other service errors map to 500", func() {
			deps.err = context.DeadlineExceeded
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/score/x", nil))

			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			var got errorResponse
			So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
			So(got.Code, ShouldEqual, "internal_error")
		})

		Convey("Non-GET verbs on the path routes are 404", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/score/x", nil))

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHealthRoutes(t *testing.T) {
	Convey("Given the health routes", t, func() {
		mux := newTestMux(&fakeDeps{})

		Convey("GET /api/v1/health reports ok", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("GET /healthz serves Prometheus exposition", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "brandpulse")
		})
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("The request id middleware", t, func() {
		inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		handler := RequestIDMiddleware(inner)

		Convey("generates an id when the caller sends none", func() {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			So(rec.Header().Get("X-Request-Id"), ShouldNotBeEmpty)
		})

		Convey("preserves a caller-provided id", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-Id", "abc-123")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			So(rec.Header().Get("X-Request-Id"), ShouldEqual, "abc-123")
		})
	})
}
