package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		env            map[string]string
		wantErr        string
		validateConfig func(t *testing.T, cfg *Config)
	}{
		{
			name: "file source with defaults",
			body: `
camunda:
  broker_address: localhost:26500
workers:
  rank-recommendations:
    enabled: true
`,
			validateConfig: func(t *testing.T, cfg *Config) {
				assert.Equal(t, CatalogSourceFile, cfg.Recommendations.CatalogSource)
				assert.Equal(t, 10, cfg.Recommendations.DefaultTopN)
				assert.Equal(t, 50, cfg.Recommendations.MaxTopN)
				assert.Equal(t, 5*time.Minute, cfg.Recommendations.CacheTTLDuration())
				assert.Equal(t, "catalog_items", cfg.Recommendations.Table)
				assert.Equal(t, 5, cfg.Workers["rank-recommendations"].MaxJobsActive)
				assert.Equal(t, 30000, cfg.Workers["rank-recommendations"].Timeout)
				assert.Equal(t, "rolec-recommendations", cfg.Observability.ServiceName)
			},
		},
		{
			name: "env placeholders are expanded",
			body: `
camunda:
  broker_address: ${TEST_ZEEBE_ADDRESS}
recommendations:
  catalog_source: postgres
database:
  postgres:
    host: db
    database: rolec
    user: ${TEST_DB_USER}
`,
			env: map[string]string{"TEST_ZEEBE_ADDRESS": "zeebe:26500", "TEST_DB_USER": "ranker"},
			validateConfig: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)
				assert.Equal(t, "ranker", cfg.Database.Postgres.User)
				assert.Equal(t, "host=db port=5432 user=ranker password= dbname=rolec sslmode=disable", cfg.Database.Postgres.GetDSN())
			},
		},
		{
			name: "environment overrides file values",
			body: `
camunda:
  broker_address: localhost:26500
recommendations:
  catalog_source: elasticsearch
`,
			env: map[string]string{"DATABASE_ELASTICSEARCH_URL": "http://es:9200"},
			validateConfig: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"http://es:9200"}, cfg.Database.Elasticsearch.Addresses)
			},
		},
		{
			name:    "missing broker",
			body:    "recommendations:\n  catalog_source: file\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name:    "unknown catalog source",
			body:    "camunda:\n  broker_address: x\nrecommendations:\n  catalog_source: s3\n",
			wantErr: "recommendations.catalog_source",
		},
		{
			name:    "postgres source needs a host",
			body:    "camunda:\n  broker_address: x\nrecommendations:\n  catalog_source: postgres\n",
			wantErr: "database.postgres.host is required",
		},
		{
			name:    "cache needs redis",
			body:    "camunda:\n  broker_address: x\nrecommendations:\n  cache_enabled: true\n",
			wantErr: "database.redis.address is required",
		},
		{
			name:    "default above max",
			body:    "camunda:\n  broker_address: x\nrecommendations:\n  default_top_n: 20\n  max_top_n: 5\n",
			wantErr: "default_top_n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadFromFile(writeConfig(t, tt.body))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.validateConfig != nil {
				tt.validateConfig(t, cfg)
			}
		})
	}
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"describe-categories": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.Equal(t, 2, GetWorkerConfig(cfg, "describe-categories").MaxJobsActive)
	assert.False(t, IsWorkerEnabled(cfg, "describe-categories"))

	fallback := GetWorkerConfig(cfg, "rank-recommendations")
	assert.True(t, fallback.Enabled)
	assert.Equal(t, 30000, fallback.Timeout)
	assert.True(t, IsWorkerEnabled(cfg, "rank-recommendations"))
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
