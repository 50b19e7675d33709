// Package pipeline sequences the splitting stages and persists a checkpoint
// after each one.
//
// Stages run in a fixed order: mark (sentence segmentation), comma (optional
// clause splits), connector (optional splits before connector words), nlp
// (optional long-sentence splits; its checkpoint is always written and is the
// input of the semantic stage), and meaning (optional LLM-assisted splits).
//
// Each checkpoint is recorded in the output directory's manifest with a
// signature of the toggles and options of its stage and every earlier one.
// With resume enabled, the furthest checkpoint whose signature matches the
// current settings is read back and only later stages run; the input file is
// opened only when the mark stage has to run. A disabled stage removes any
// checkpoint it left behind. Only unreadable input, a locked output
// directory, or a failed checkpoint write fails a run.
package pipeline
