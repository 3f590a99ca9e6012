package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/scorebook/internal/app"
	"github.com/okian/scorebook/internal/config"
	"github.com/okian/scorebook/internal/domain/catalog"
	"github.com/okian/scorebook/pkg/logger"
	"github.com/okian/scorebook/pkg/metrics"
)

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)
		_ = logger.SetLevelString("error")
		ctx := context.Background()

		convey.Convey("When wiring the router against a started service", func() {
			cfg := config.New()
			cfg.Roster = []string{"#1"}
			cfg.CORSOrigins = []string{"*"}
			svc := app.New(app.WithRoster(cfg.Roster))
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			srv := httptest.NewServer(newRouter(ctx, cfg, svc, logger.Get()))
			defer srv.Close()

			convey.Convey("Then a match can be created over HTTP", func() {
				resp, err := srv.Client().Post(srv.URL+"/matches", "application/json", strings.NewReader(`{}`))
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)
			})
		})

		convey.Convey("When building the HTTP server", func() {
			s := newHTTPServer(":0", http.NotFoundHandler())

			convey.Convey("Then the timeouts are set", func() {
				convey.So(s.ReadTimeout, convey.ShouldEqual, readTimeout)
				convey.So(s.WriteTimeout, convey.ShouldEqual, writeTimeout)
				convey.So(s.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)
			})
		})

		convey.Convey("When updating system metrics", func() {
			updateSystemMetrics()

			convey.Convey("Then the gauges are published", func() {
				n, err := testutil.GatherAndCount(metrics.GetRegistry(), "scorebook_ledger_system_goroutine_count")
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the system metrics updater is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(cctx, time.Millisecond)
				close(done)
			}()
			cancel()

			convey.Convey("Then it returns", func() {
				stopped := false
				select {
				case <-done:
					stopped = true
				case <-time.After(time.Second):
				}
				convey.So(stopped, convey.ShouldBeTrue)
			})
		})
	})
}

func TestRunRejectsInvalidCatalog(t *testing.T) {
	convey.Convey("Given a catalog whose buckets are both scoring and error", t, func() {
		f, err := os.CreateTemp("", "scorebook-catalog-*.yaml")
		convey.So(err, convey.ShouldBeNil)
		_, _ = f.WriteString(`
buckets: ["Point"]
scoring_buckets: ["Point"]
error_buckets: ["Point"]
events:
  - key: point
    effect: home
    bucket: Point
`)
		_ = f.Close()
		defer func() { _ = os.Remove(f.Name()) }()

		_ = os.Setenv("SCOREBOOK_CATALOG_FILE", f.Name())
		_ = os.Setenv("SCOREBOOK_LOG_LEVEL", "error")
		defer func() {
			_ = os.Unsetenv("SCOREBOOK_CATALOG_FILE")
			_ = os.Unsetenv("SCOREBOOK_LOG_LEVEL")
		}()

		convey.Convey("When the server starts", func() {
			err := run(context.Background())

			convey.Convey("Then startup fails with the classification error", func() {
				convey.So(errors.Is(err, catalog.ErrInvalidCatalogClassification), convey.ShouldBeTrue)
			})
		})
	})
}
