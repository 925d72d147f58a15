package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address
//	-d string   database DSN ("memory://" for the in-process store)
//	-s string   token signing secret
//	-t int      token validity, hours
//	-u string   public base URL used in join links
//	-b string   S3 bucket for profile pictures
//	-e string   S3 base endpoint
//	-k string   Kafka brokers, comma separated
//	-o string   OTLP collector endpoint
//	-l string   log level
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run the gRPC health service")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Hours()), "token validity (in hours)")
	fs.StringVar(&config.PublicBaseURL, "u", config.PublicBaseURL, "public base URL")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.KafkaBrokers, "k", config.KafkaBrokers, "Kafka brokers")
	fs.StringVar(&config.OTLPEndpoint, "o", config.OTLPEndpoint, "OTLP endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := flagx.ParseKnown(fs, os.Args[1:]); err != nil {
		panic(err)
	}

	if *tokenValidity > 0 {
		config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Hour
	}
}
