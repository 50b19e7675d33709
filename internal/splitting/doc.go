// Package splitting turns joined transcript text into sentences and breaks
// long sentences at clause boundaries.
//
// Segmenter runs sentence-boundary detection over the joined units and repairs
// over-segmentation: a sentence that begins with a dash or ellipsis, or whose
// predecessor ends with one, is merged back into the predecessor, and a
// sentence made only of stray punctuation is glued onto the previous line.
//
// CommaSplitter inspects each comma with a token window on either side and
// splits only when the text after the comma reads as an independent clause
// (a subject and a verb) and both sides are long enough to stand alone.
//
// ConnectorSplitter splits before per-language connector words ("because",
// "但是", "parce que") when enough words stand on both sides.
//
// LongSplitter breaks sentences above a token limit at verbs or sentence
// ends, then evenly cuts whatever is still too long.
//
// All strategies preserve the original characters; fragments are always
// substrings of their input.
package splitting
