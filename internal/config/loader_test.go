package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/scorebook/internal/config"
	"github.com/okian/scorebook/internal/domain/catalog"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
				convey.So(cfg.MaxMatches, convey.ShouldEqual, 1_000)
				convey.So(cfg.Roster, convey.ShouldResemble, config.DefaultRoster())
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"*"})
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SCOREBOOK_ADDR", ":8080")
			_ = os.Setenv("SCOREBOOK_LOG_FORMAT", "json")
			_ = os.Setenv("SCOREBOOK_MAX_MATCHES", "5")
			_ = os.Setenv("SCOREBOOK_ROSTER", "#3, #4,#5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.MaxMatches, convey.ShouldEqual, 5)
				convey.So(cfg.Roster, convey.ShouldResemble, []string{"#3", "#4", "#5"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
dedupe_size: 10
roster: ["#2", "#9"]
cors_origins: ["https://scores.example"]
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SCOREBOOK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values replace defaults and lists are not merged", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 10)
				convey.So(cfg.MaxMatches, convey.ShouldEqual, 1_000)
				convey.So(cfg.Roster, convey.ShouldResemble, []string{"#2", "#9"})
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"https://scores.example"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
max_matches: 3
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SCOREBOOK_CONFIG", tmpFile)
			_ = os.Setenv("SCOREBOOK_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxMatches, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SCOREBOOK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SCOREBOOK_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid values", func() {
			_ = os.Setenv("SCOREBOOK_MAX_MATCHES", "-2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SCOREBOOK_DEDUPE_SIZE", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestLoadCatalog(t *testing.T) {
	convey.Convey("Given a catalog loader", t, func() {
		ctx := context.Background()

		convey.Convey("When the path is empty", func() {
			cat, err := config.LoadCatalog(ctx, "")

			convey.Convey("Then the built-in catalog is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cat.AllBuckets(), convey.ShouldResemble, catalog.Default().AllBuckets())
			})
		})

		convey.Convey("When the file describes a valid catalog", func() {
			tmpFile := createTempConfigFile(`
buckets: ["Point", "Miss", "Touch"]
scoring_buckets: ["Point"]
error_buckets: ["Miss"]
events:
  - key: point
    effect: home
    bucket: Point
  - key: miss
    effect: away
    bucket: Miss
  - key: touch
    effect: neutral
    bucket: Touch
  - key: opp_fault
    effect: home
    bucket: Point
    opponent: true
`)
			defer func() { _ = os.Remove(tmpFile) }()

			cat, err := config.LoadCatalog(ctx, tmpFile)

			convey.Convey("Then it is validated and usable", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cat.AllBuckets(), convey.ShouldResemble, []string{"Point", "Miss", "Touch"})
				def, err := cat.Lookup("opp_fault")
				convey.So(err, convey.ShouldBeNil)
				convey.So(def.Opponent, convey.ShouldBeTrue)
				convey.So(def.Effect, convey.ShouldEqual, catalog.EffectHome)
			})
		})

		convey.Convey("When a bucket is both scoring and error", func() {
			tmpFile := createTempConfigFile(`
buckets: ["Point"]
scoring_buckets: ["Point"]
error_buckets: ["Point"]
events:
  - key: point
    effect: home
    bucket: Point
`)
			defer func() { _ = os.Remove(tmpFile) }()

			cat, err := config.LoadCatalog(ctx, tmpFile)

			convey.Convey("Then the classification error is reported", func() {
				convey.So(cat, convey.ShouldBeNil)
				convey.So(errors.Is(err, catalog.ErrInvalidCatalogClassification), convey.ShouldBeTrue)
				convey.So(errors.Is(err, config.ErrLoadCatalog), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.LoadCatalog(ctx, "/non/existent/catalog.yaml")
			convey.So(errors.Is(err, config.ErrLoadCatalog), convey.ShouldBeTrue)
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"SCOREBOOK_CONFIG",
		"SCOREBOOK_ADDR",
		"SCOREBOOK_LOG_FORMAT",
		"SCOREBOOK_LOG_LEVEL",
		"SCOREBOOK_MAX_MATCHES",
		"SCOREBOOK_DEDUPE_SIZE",
		"SCOREBOOK_ROSTER",
		"SCOREBOOK_CORS_ORIGINS",
		"SCOREBOOK_CATALOG_FILE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "scorebook-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
