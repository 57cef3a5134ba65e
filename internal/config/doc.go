// Package config loads the optional stackup settings file.
//
// The file lives in the target directory and may be written in YAML,
// TOML, JSON or JSONC (JSON with comments). The first existing candidate
// in this order wins:
//
//	stackup.yaml, stackup.yml, stackup.toml, stackup.json, stackup.jsonc
//
// Example (YAML):
//
//	host: localhost
//	probeTimeout: 500ms
//	services:
//	  mysql: {preferred: 3306, min: 3306, max: 3350}
//	mysqlTest:
//	  max: 3350
//	wait:
//	  attempts: 60
//	  interval: 1s
//	composeFile: docker-compose.yml
//
// Omitted fields keep their built-in defaults. Unknown keys are rejected
// so typos do not silently fall back to defaults.
package config
