package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	t.Setenv("PORT", "9001")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("TOKEN_VALIDITY", "72h")
	t.Setenv("ALLOWED_ORIGINS", "http://a, ,http://b")
	t.Setenv("MODE_ENV", "development")
	t.Setenv("S3_PUBLIC_URL", "https://cdn.example")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, ":9001", c.EndpointAddrHTTP)
	assert.Equal(t, "postgres://env", c.DatabaseDSN)
	assert.Equal(t, "env-secret", c.SecretKey)
	assert.Equal(t, 72*time.Hour, c.TokenValidityDuration)
	assert.Equal(t, []string{"http://a", "http://b"}, c.AllowedOrigins)
	assert.False(t, c.CookieSecure, "development mode drops the Secure cookie attribute")
	assert.Equal(t, "https://cdn.example", c.S3PublicURL)
	assert.Equal(t, "media", c.S3Bucket, "unset variables keep defaults")
}

func Test_parseEnv_DotEnvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("S3_REGION=eu-north-1\n"), 0o600))
	t.Setenv("S3_REGION", "")
	require.NoError(t, os.Unsetenv("S3_REGION"))

	os.Args = []string{"testbin", "-envfile", path}

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "eu-north-1", c.S3Region)
}

func Test_parseEnv_Malformed(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	t.Run("duration", func(t *testing.T) {
		t.Setenv("TOKEN_VALIDITY", "a week")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})

	t.Run("bool", func(t *testing.T) {
		t.Setenv("COOKIE_SECURE", "perhaps")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})

	t.Run("missing explicit env file", func(t *testing.T) {
		os.Args = []string{"testbin", "-f", filepath.Join(t.TempDir(), "absent.env")}
		require.Panics(t, func() { parseEnv(&Config{}) })
	})
}
