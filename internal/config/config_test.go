package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 6, cfg.SequencePad)
	assert.Equal(t, int64(10), cfg.SequenceBaseline)
	assert.Equal(t, 10*time.Minute, cfg.FacetCacheTTL)
	assert.False(t, cfg.SMTPEnabled())
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("SEQUENCE_PAD", "8")
	t.Setenv("FACET_CACHE_TTL", "30s")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("NOTIFY_EMAIL", "admin@example.com")

	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.HTTPPort)
	assert.Equal(t, 8, cfg.SequencePad)
	assert.Equal(t, 30*time.Second, cfg.FacetCacheTTL)
	assert.True(t, cfg.MinioUseSSL)
	assert.True(t, cfg.SMTPEnabled())
}

func TestValidate(t *testing.T) {
	cfg := &Config{MongoURI: "", MongoDatabase: "db", MinioEndpoint: "m", MinioBucket: "b", SequencePad: 0}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
	assert.Contains(t, err.Error(), "SEQUENCE_PAD")
}
