// Package config loads cmsfetch settings.
//
// Sources are applied in order, each overriding the previous one:
//
//  1. built-in defaults (Default)
//  2. an optional YAML file
//  3. environment variables (DOTCMS_* and CMSFETCH_*)
//  4. secret resolution of credential fields (${VAR}, secretref:env:NAME,
//     secretref:file:PATH)
//
// The result is validated before it is returned.
//
// Example file:
//
//	dotcms:
//	  host: https://demo.dotcms.com
//	  token: secretref:env:DOTCMS_API_TOKEN
//	  timeout: 30s
//	cache:
//	  backend: redis
//	  redis_url: redis://localhost:6379/0
//	  live_ttl: 60s
//	observability:
//	  log_level: info
package config
