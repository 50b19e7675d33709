// Package main hosts the subseg CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration (plus an optional .env
// file), builds the splitting pipeline, and renders stage summaries. Cache and
// LLM maintenance commands live alongside the split command.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
