package health

import "context"

// DBPinger checks note store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks remote embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
