// Package llm provides an OpenAI-compatible chat client used as the semantic
// split service backend.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive the raw JSON payload.
// Client.HealthCheck: verify API key and model availability.
// Client.Usage: request, retry, and token counters for run summaries.
// DecodeLLMJSON: decode a payload tolerating code fences and surrounding prose.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions, and
// network timeouts with exponential backoff (base 1s, max 10s). Retry-After
// headers are honoured up to the max delay. Context cancellation aborts
// retries immediately. Exhausted retries are reported with services.ErrTransient.
//
// # Errors
//
// Every failure returned by CompleteJSON matches services.ErrSemanticService
// (or ErrConfiguration/ErrValidation for unusable input), so callers can keep
// a fragment unsplit without inspecting provider details.
package llm
