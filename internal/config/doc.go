// Package config loads steward's configuration.
//
// # Resolution
//
// Load follows this order:
//
//  1. Read the TOML file at the given path, or ~/.config/steward/config.toml
//  2. A missing file is not an error; every field has a default
//  3. Apply STEWARD_* environment overrides (caarlos0/env)
//  4. Trim, expand and default whatever is still empty
//
// # TOML Format
//
//	api_bind = "127.0.0.1:8080"
//	api_token = ""
//	log_dir = "~/.local/state/steward"
//	log_level = "info"
//	page_size = 10
//	max_page_size = 100
//	search_debounce_ms = 300   # negative disables search debouncing
//	poll_seconds = 30
//
//	[tables.applications]
//	server_pagination = true
//
// # Environment
//
//   - STEWARD_API_BIND
//   - STEWARD_API_TOKEN
//   - STEWARD_LOG_DIR
//   - STEWARD_LOG_LEVEL
//   - STEWARD_PAGE_SIZE
//
// Each [tables.<resource>] block may flip a screen between local and
// server-side paging. Resources without a block keep their built-in mode.
package config
