package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/huntplanur/internal/flagx"
	"github.com/dmitrijs2005/huntplanur/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// "24h"-style strings or integer nanoseconds. Absent keys keep the value
// already in Config.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	BcryptCost            int            `json:"bcrypt_cost"`
	PublicBaseURL         string         `json:"public_base_url"`
	GinMode               string         `json:"gin_mode"`
	LogLevel              string         `json:"log_level"`
	GoogleClientID        string         `json:"google_client_id"`
	GoogleCertsURL        string         `json:"google_certs_url"`
	GeocoderURL           string         `json:"geocoder_url"`
	GeocoderTimeout       timex.Duration `json:"geocoder_timeout"`
	GeocoderUserAgent     string         `json:"geocoder_user_agent"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	KafkaBrokers          string         `json:"kafka_brokers"`
	KafkaTopic            string         `json:"kafka_topic"`
	OTLPEndpoint          string         `json:"otlp_endpoint"`
}

// parseJson loads the file named by -c/-config into config. Without the
// flag nothing happens; an unreadable or malformed file panics, as the
// server cannot start on a half-applied configuration.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.GinMode, c.GinMode)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.GoogleClientID, c.GoogleClientID)
	setString(&config.GoogleCertsURL, c.GoogleCertsURL)
	setString(&config.GeocoderURL, c.GeocoderURL)
	if c.GeocoderTimeout.Duration > 0 {
		config.GeocoderTimeout = c.GeocoderTimeout.Duration
	}
	setString(&config.GeocoderUserAgent, c.GeocoderUserAgent)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.KafkaBrokers, c.KafkaBrokers)
	setString(&config.KafkaTopic, c.KafkaTopic)
	setString(&config.OTLPEndpoint, c.OTLPEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
