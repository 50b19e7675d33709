// Package alignment maps break markers in a paraphrased sentence back onto
// byte offsets in the original sentence.
//
// The semantic service returns its proposal as rewritten text, which may
// differ from the source in spacing, casing, or wording. Only the positions
// of its break markers are trusted: each part before a marker is compared
// with growing prefixes of the remaining original text, and the prefix with
// the highest similarity ratio fixes the offset. Segments are always cut
// from the original text.
package alignment
