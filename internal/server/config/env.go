package config

import (
	"github.com/spf13/viper"
)

// EnvPrefix namespaces the environment overlay: HUNT_DATABASE_DSN etc.
const EnvPrefix = "HUNT"

// parseEnv overlays HUNT_* environment variables. Only variables that are
// actually set take effect.
func parseEnv(config *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	stringKeys := map[string]*string{
		"endpoint_addr_http":  &config.EndpointAddrHTTP,
		"endpoint_addr_grpc":  &config.EndpointAddrGRPC,
		"database_dsn":        &config.DatabaseDSN,
		"secret_key":          &config.SecretKey,
		"public_base_url":     &config.PublicBaseURL,
		"gin_mode":            &config.GinMode,
		"log_level":           &config.LogLevel,
		"google_client_id":    &config.GoogleClientID,
		"google_certs_url":    &config.GoogleCertsURL,
		"geocoder_url":        &config.GeocoderURL,
		"geocoder_user_agent": &config.GeocoderUserAgent,
		"s3_root_user":        &config.S3RootUser,
		"s3_root_password":    &config.S3RootPassword,
		"s3_bucket":           &config.S3Bucket,
		"s3_region":           &config.S3Region,
		"s3_base_endpoint":    &config.S3BaseEndpoint,
		"kafka_brokers":       &config.KafkaBrokers,
		"kafka_topic":         &config.KafkaTopic,
		"otlp_endpoint":       &config.OTLPEndpoint,
	}
	for key, dst := range stringKeys {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	if v.IsSet("token_validity_duration") {
		if d := v.GetDuration("token_validity_duration"); d > 0 {
			config.TokenValidityDuration = d
		}
	}
	if v.IsSet("geocoder_timeout") {
		if d := v.GetDuration("geocoder_timeout"); d > 0 {
			config.GeocoderTimeout = d
		}
	}
	if v.IsSet("bcrypt_cost") {
		if n := v.GetInt("bcrypt_cost"); n > 0 {
			config.BcryptCost = n
		}
	}
}
