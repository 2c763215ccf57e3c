package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variable names understood by parseEnv.
const (
	envPort           = "PORT"
	envAddr           = "HTTP_ADDR"
	envDatabaseURL    = "DATABASE_URL"
	envSecret         = "JWT_SECRET"
	envTokenValidity  = "TOKEN_VALIDITY"
	envAllowedOrigins = "ALLOWED_ORIGINS"
	envMode           = "MODE_ENV"
	envCookieSecure   = "COOKIE_SECURE"
	envMigrations     = "MIGRATIONS_ENABLED"
	envS3User         = "S3_ROOT_USER"
	envS3Password     = "S3_ROOT_PASSWORD"
	envS3Bucket       = "S3_BUCKET"
	envS3Region       = "S3_REGION"
	envS3Endpoint     = "S3_BASE_ENDPOINT"
	envS3PublicURL    = "S3_PUBLIC_URL"
)

// loadDotEnv seeds the process environment from a dotenv file. An explicit
// -envfile must exist; the implicit ./.env is optional. Variables already set
// in the environment are never overwritten.
func loadDotEnv() {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

// parseEnv overlays Config with values found in the environment. Unset
// variables leave the current value untouched; malformed values panic, the
// same way malformed JSON or flags do.
func parseEnv(config *Config) {
	loadDotEnv()

	if v, ok := os.LookupEnv(envPort); ok && v != "" {
		config.EndpointAddrHTTP = ":" + strings.TrimPrefix(v, ":")
	}
	setString(&config.EndpointAddrHTTP, envAddr)
	setString(&config.DatabaseDSN, envDatabaseURL)
	setString(&config.SecretKey, envSecret)

	if v, ok := os.LookupEnv(envTokenValidity); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.TokenValidityDuration = d
	}

	if v, ok := os.LookupEnv(envAllowedOrigins); ok && v != "" {
		config.AllowedOrigins = splitList(v)
	}

	if v, ok := os.LookupEnv(envMode); ok && v == "development" {
		config.CookieSecure = false
	}
	setBool(&config.CookieSecure, envCookieSecure)
	setBool(&config.MigrationsEnabled, envMigrations)

	setString(&config.S3RootUser, envS3User)
	setString(&config.S3RootPassword, envS3Password)
	setString(&config.S3Bucket, envS3Bucket)
	setString(&config.S3Region, envS3Region)
	setString(&config.S3BaseEndpoint, envS3Endpoint)
	setString(&config.S3PublicURL, envS3PublicURL)
}

func setString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, name string) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(err)
	}
	*dst = b
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
