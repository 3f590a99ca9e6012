package service

import (
	"github.com/okian/scorebook/internal/domain/catalog"
	"github.com/okian/scorebook/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCatalog sets the event catalog shared by every match.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(s *Service) {
		if cat != nil {
			s.catalog = cat
		}
	}
}

// WithRoster sets the starters a match begins with when none are given.
func WithRoster(roster []string) Option {
	return func(s *Service) {
		s.roster = append([]string(nil), roster...)
	}
}

// WithDedupeSize sets the size of the request id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithMaxMatches caps the number of hosted matches; zero means unlimited.
func WithMaxMatches(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxMatches = n
		}
	}
}
