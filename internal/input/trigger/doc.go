// Package trigger recognizes markdown shortcuts in block text and replays
// them as engine operations.
//
// Pattern recognition deliberately lives outside the engine: the engine
// never scans input, it only exposes transforms and mark edits. The editor
// calls Apply after every text insertion; the detector inspects the block's
// current text and the caret, fires at most one rule, and reports what it
// did.
//
// Two rule families exist:
//
//   - Line rules match a marker at the start of a paragraph ("# ", "- ",
//     "1. ", "> ", "---"). Firing strips the marker and transforms the
//     block to the target kind.
//   - Inline rules match a delimited span ending at the caret ("**bold**",
//     "*italic*", "`code`", "~~strike~~", "[label](url)"). Firing strips
//     the delimiters and applies the mark to the enclosed text.
//
// Rules fire only when the caret sits immediately after the text that
// completes them, so pre-existing literal markers elsewhere in a block are
// left alone.
package trigger
