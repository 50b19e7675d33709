// Package nlp provides the linguistic capabilities consumed by the splitting
// stages: sentence boundary detection and token analysis with coarse
// part-of-speech and subject tags.
//
// Two engines are available. ProseEngine wraps github.com/jdkato/prose/v2 for
// English; RuleEngine is a deterministic lexicon and suffix tagger that covers
// the remaining languages and doubles as the fallback for English. A Chain
// tries engines in order and adopts the first usable result, ending with the
// regex sentence splitter that never fails.
//
// All offsets are byte offsets into the analyzed string so callers can slice
// the original text without copying or re-normalizing it.
package nlp
