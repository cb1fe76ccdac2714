// Package config provides centralized configuration management for ledgerlens.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones winning:
//
//	1. Default values (Default)
//	2. An optional YAML file (LEDGER_CONFIG_FILE, config.yaml or configs/config.yaml)
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern LEDGER_<SECTION>_<FIELD>:
//
//	LEDGER_SERVER_PORT=8080
//	LEDGER_LOGGING_LEVEL=debug
//	LEDGER_UPLOAD_MAX_FILE_SIZE=5242880
//	LEDGER_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,http://localhost:8080
//
// A .env file in the working directory is loaded by the binary before Load runs.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests should use Default or LoadFrom with a temporary file.
package config
