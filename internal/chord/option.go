package chord

import "chorddht/internal/logger"

// Option configures a Service at construction time.
type Option func(*Service)

// WithLogger attaches a structured logger to the service.
func WithLogger(lgr logger.Logger) Option {
	return func(s *Service) { s.logger = lgr }
}
