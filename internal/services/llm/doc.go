// Package llm provides an OpenRouter-compatible chat client used as a
// translation backend.
//
// # Translation
//
// Client.Translate sends one segment of dialogue to the configured model with
// a system prompt naming the source and target languages, and expects a JSON
// object {"translation": "..."} back. Code fences, tool-call arguments, delta
// payloads and legacy completion text are all accepted as the response body.
//
// # Configuration
//
// Requires api_key and model, and optionally base_url, referer, title, prompt
// and timeout_seconds. A custom prompt may use the {from} and {to}
// placeholders.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions and
// network timeouts with exponential backoff (base 1s, max 10s, up to 5
// attempts by default). Context cancellation aborts retries immediately.
//
// Client.HealthCheck is used by `redub check` to verify the key and model.
package llm
