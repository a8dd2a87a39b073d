package scorecheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func stubService(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/health":
			json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
		case "/api/v1/score/Adele":
			json.NewEncoder(w).Encode(map[string]any{
				"artist_name": "Adele", "final_score": 88.5, "score_grade": "A",
				"warnings": []string{},
			})
		case "/api/v1/score/Nobody/quick", "/api/v1/score/Adele/quick":
			json.NewEncoder(w).Encode(map[string]any{
				"artist_name": "Adele", "score": 88.5, "grade": "A",
			})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConfigValidate(t *testing.T) {
	Convey("Config validation", t, func() {
		good := &Config{BaseURL: "http://localhost:8080", Artists: []string{"Adele"}, Workers: 2}
		So(good.Validate(), ShouldBeNil)

		So((&Config{Artists: []string{"Adele"}, Workers: 2}).Validate(), ShouldNotBeNil)
		So((&Config{BaseURL: "x", Workers: 2}).Validate(), ShouldNotBeNil)
		So((&Config{BaseURL: "x", Artists: []string{"Adele"}}).Validate(), ShouldNotBeNil)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running service", t, func() {
		srv := stubService(t)
		ctx := context.Background()

		Convey("A successful batch returns nil", func() {
			cfg := &Config{
				BaseURL: srv.URL,
				Artists: []string{"Adele"},
				Workers: 2,
				Timeout: 5 * time.Second,
			}
			So(Run(ctx, cfg), ShouldBeNil)
		})

		Convey("A fully failed batch is reported as an error", func() {
			cfg := &Config{
				BaseURL: srv.URL,
				Artists: []string{"Unknown One", "Unknown Two"},
				Workers: 2,
				Timeout: 5 * time.Second,
			}
			err := Run(ctx, cfg)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "all 2 score requests failed")
		})

		Convey("An unreachable service fails fast", func() {
			cfg := &Config{
				BaseURL: "http://127.0.0.1:1",
				Artists: []string{"Adele"},
				Workers: 1,
				Timeout: time.Second,
			}
			err := Run(ctx, cfg)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "not reachable")
		})
	})
}
