// Package semantic splits over-long fragments with help from a text
// generation service.
//
// The Orchestrator counts words per fragment, sends only fragments over the
// limit to a Service, and writes each result into a pre-sized, index-addressed
// buffer so output order never depends on completion order. Service answers
// are paraphrases with break markers; the alignment package maps the markers
// back to offsets in the original fragment, and only original characters are
// emitted. Any per-fragment failure leaves that fragment unsplit.
//
// PromptService adapts a JSON chat completer (see internal/services/llm) to
// the Service interface: it renders the split prompt, validates the decoded
// response, and retries with a slightly perturbed prompt.
package semantic
