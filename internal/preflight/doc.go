// Package preflight provides readiness checks for the filesystem paths and
// services a split run depends on.
//
// The CLI "subseg check" command runs RunAll and prints one line per check;
// "subseg llm check" uses CheckLLM alone. Checks for disabled features are
// skipped.
package preflight
