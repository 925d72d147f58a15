// Package config loads runtime configuration for huntctl.
//
// Sources, in order of precedence (later wins):
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags -a, -t and -i.
//
// JSON example:
//
//	{
//	  "server_url": "https://hunt.example.com",
//	  "request_timeout": "10s",
//	  "alert_poll_interval": "5s"
//	}
package config
