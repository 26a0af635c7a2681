package repository

import "github.com/okian/mealmax/pkg/logger"

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithSchemaPath reads the create-table script from path instead of the
// embedded copy.
func WithSchemaPath(path string) Option {
	return func(s *SQLiteStore) {
		s.schemaPath = path
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLiteStore) {
		if l != nil {
			s.logger = l
		}
	}
}
