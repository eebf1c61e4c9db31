package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("API_URL", "http://backend:8000")
	t.Setenv("ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()
	require.Equal(t, ":3000", cfg.ListenAddr)
	require.Equal(t, "http://backend:8000", cfg.APIURL)
	require.Equal(t, "webfront.db", cfg.StatePath)
	require.Nil(t, cfg.KafkaBrokers)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.Production())

	t.Setenv("APP_ENV", "production")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	cfg = Load()
	require.True(t, cfg.Production())
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}
