// Package config loads, normalizes, and validates ytleads configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a working-directory .env file, and
// honours environment fallbacks such as OPENROUTER_API_KEY, MAKE_WEBHOOK_URL
// and NTFY_TOPIC. The Config type centralizes every knob the CLI and API server
// need so storage, generation, and transcript settings are discovered in one
// pass.
package config
