package ghinote

import (
	"testing"
	"time"

	"github.com/ghinote/ghinote/internal/domain/query"
)

func TestOpen_RequiresAddress(t *testing.T) {
	if _, err := Open(); err == nil {
		t.Fatal("expected an error without a store address")
	}
}

func TestOptions(t *testing.T) {
	cfg := &clientConfig{}
	for _, o := range []Option{
		WithRedis([]string{"localhost:6379"}, "secret"),
		WithQueryTimeout(5 * time.Second),
		WithEmbedTimeout(2 * time.Second),
		WithShortTextLimit(300),
		WithEmbeddingCacheTTL(time.Hour),
		WithStopwords([]string{"của"}),
		WithMarkers(query.Markers{Structured: []string{"khi nào"}}),
	} {
		o(cfg)
	}

	if len(cfg.addrs) != 1 || cfg.password != "secret" {
		t.Errorf("store options not applied: %+v", cfg)
	}
	if cfg.queryTimeout != 5*time.Second || cfg.embedTimeout != 2*time.Second {
		t.Errorf("timeouts not applied: %+v", cfg)
	}
	if cfg.shortTextLimit != 300 || cfg.cacheTTL != time.Hour {
		t.Errorf("limits not applied: %+v", cfg)
	}
	if len(cfg.stopwords) != 1 || len(cfg.markers.Structured) != 1 {
		t.Errorf("word lists not applied: %+v", cfg)
	}
}
