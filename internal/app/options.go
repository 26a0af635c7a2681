package service

import (
	"github.com/okian/mealmax/internal/domain/battle"
	"github.com/okian/mealmax/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDBPath sets the SQLite database file.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithSchemaPath sets the create-table script used instead of the embedded one.
func WithSchemaPath(path string) Option {
	return func(s *Service) {
		s.schemaPath = path
	}
}

// WithWorkerCount sets the number of history workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the history queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many applied stat updates are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxSessions caps concurrently open battle sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithRandomSeed seeds the battle draw generator. Zero picks a random seed.
func WithRandomSeed(seed int64) Option {
	return func(s *Service) {
		s.randomSeed = seed
	}
}

// WithRandomSource overrides the battle draw generator.
func WithRandomSource(src battle.RandomSource) Option {
	return func(s *Service) {
		if src != nil {
			s.random = src
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
