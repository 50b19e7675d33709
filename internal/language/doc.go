// Package language normalizes language identifiers and answers the one
// script question the splitter cares about: are words separated by spaces.
//
// Codes may be ISO 639-1 or 639-2, BCP 47 tags such as "zh-Hans", or English
// names such as "english". Everything normalizes to the ISO 639-1 base,
// which drives the joiner used when concatenating units and segments.
package language
