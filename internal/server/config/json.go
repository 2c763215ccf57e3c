package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
	"github.com/dmitrijs2005/gophchat/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "168h" and integer nanoseconds.
//
// Pointer fields distinguish "absent" from "false".
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	AllowedOrigins        []string       `json:"allowed_origins"`
	CookieSecure          *bool          `json:"cookie_secure"`
	MigrationsEnabled     *bool          `json:"migrations_enabled"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	S3PublicURL           string         `json:"s3_public_url"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags. If neither
// is set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics. Only keys present in the file override
// the current values.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	overrideString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overrideString(&config.DatabaseDSN, c.DatabaseDSN)
	overrideString(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.MigrationsEnabled != nil {
		config.MigrationsEnabled = *c.MigrationsEnabled
	}
	overrideString(&config.S3RootUser, c.S3RootUser)
	overrideString(&config.S3RootPassword, c.S3RootPassword)
	overrideString(&config.S3Bucket, c.S3Bucket)
	overrideString(&config.S3Region, c.S3Region)
	overrideString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overrideString(&config.S3PublicURL, c.S3PublicURL)
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
