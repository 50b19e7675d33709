// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and fragment indexes
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into fatal (missing input, broken configuration) and locally recovered
//     ones (linguistic engine, semantic service, low-confidence alignment).
//
// Use these helpers when wiring new stage logic so operational behaviour (error
// handling, observability) stays uniform across the pipeline.
package services
