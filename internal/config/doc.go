// Package config loads, normalizes, and validates redub configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads .env files, and honours environment
// fallbacks such as OPENAI_API_KEY and OPENROUTER_API_KEY. The Config type
// centralizes every knob the CLI and pipeline need, including the vocal stem
// index that the remix engine treats as fixed.
package config
