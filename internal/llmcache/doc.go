// Package llmcache persists validated LLM completions in SQLite so repeated
// runs over the same transcript reuse earlier answers.
//
// Entries are keyed by a hash of the model name and both prompts. Completer
// decorates any JSON completer: hits are served from the store, misses go to
// the wrapped completer, and only responses that pass the configured
// validator are written back.
package llmcache
