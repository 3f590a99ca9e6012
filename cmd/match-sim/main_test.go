package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scorebook/internal/adapters/http/api"
	service "github.com/okian/scorebook/internal/app"
	"github.com/okian/scorebook/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func TestRootCmd(t *testing.T) {
	Convey("Given a scorebook service", t, func() {
		ctx := context.Background()
		svc := service.New()
		So(svc.Start(ctx), ShouldBeNil)
		srv := httptest.NewServer(api.NewServer(svc, svc).Handler(ctx))
		defer func() {
			srv.Close()
			svc.Stop()
		}()

		var stdout, stderr bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)

		Convey("When the simulator runs against it", func() {
			cmd.SetArgs([]string{"--url", srv.URL, "--rallies", "10", "--seed", "3", "--cleanup"})
			err := cmd.ExecuteContext(ctx)

			Convey("Then it prints the pivot and a passing verdict", func() {
				So(err, ShouldBeNil)
				So(stdout.String(), ShouldContainSubstring, "Total Errors")
				So(stdout.String(), ShouldContainSubstring, "PASS")
			})
		})

		Convey("When the catalog file does not exist", func() {
			missing := filepath.Join(t.TempDir(), "missing.yaml")
			cmd.SetArgs([]string{"--url", srv.URL, "--catalog", missing})
			err := cmd.ExecuteContext(ctx)

			Convey("Then the command fails before contacting the service", func() {
				So(err, ShouldNotBeNil)
				So(stdout.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the rally count is invalid", func() {
			cmd.SetArgs([]string{"--url", srv.URL, "--rallies", "0"})
			err := cmd.ExecuteContext(ctx)

			Convey("Then the command fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "rallies")
			})
		})
	})
}
