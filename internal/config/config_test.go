package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"elder-risk-aggregator/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "app:\n  name: elderwatch\n"))
	require.NoError(t, err)

	require.Equal(t, "elderwatch", cfg.App.Name)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "mongodb://localhost:27017", cfg.Docstore.URI)
	require.Equal(t, "eldercare", cfg.Docstore.Database)
	require.Equal(t, 7, cfg.Aggregation.DefaultWindowDays)
	require.Equal(t, 10*time.Second, cfg.Aggregation.DomainTimeout)
	require.Equal(t, 10, cfg.Aggregation.RiskHistoryLimit)
	require.NotEmpty(t, cfg.Aggregation.LonelinessKeywords)
	require.NotEmpty(t, cfg.Aggregation.HealthKeywords)
	require.Equal(t, 15*time.Minute, cfg.Scheduler.Interval)
	require.Equal(t, 100000, cfg.Export.MaxDataPoints)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
docstore:
  uri: mongodb://db.internal:27017
  database: monitoring
aggregation:
  default_window_days: 14
  domain_timeout: 3s
subjects:
  - elder-1
  - elder-2
`))
	require.NoError(t, err)

	require.Equal(t, "mongodb://db.internal:27017", cfg.Docstore.URI)
	require.Equal(t, "monitoring", cfg.Docstore.Database)
	require.Equal(t, 14, cfg.Aggregation.DefaultWindowDays)
	require.Equal(t, 3*time.Second, cfg.Aggregation.DomainTimeout)
	require.Equal(t, []string{"elder-1", "elder-2"}, cfg.Subjects)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"zero window":      "aggregation:\n  default_window_days: 0\n",
		"zero timeout":     "aggregation:\n  domain_timeout: 0s\n",
		"empty uri":        "docstore:\n  uri: \"\"\n",
		"empty database":   "docstore:\n  database: \"\"\n",
		"zero interval":    "scheduler:\n  interval: 0s\n",
		"zero max points":  "export:\n  max_data_points: 0\n",
		"negative history": "aggregation:\n  risk_history_limit: -1\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, content))
			require.Error(t, err)
		})
	}
}

func TestResolveWindowDays(t *testing.T) {
	cfg := &config.Config{}
	cfg.Aggregation.DefaultWindowDays = 7

	require.Equal(t, 7, cfg.ResolveWindowDays(0))
	require.Equal(t, 30, cfg.ResolveWindowDays(30))
}
