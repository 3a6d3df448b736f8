// Package persist reads and writes documents on disk.
//
// The native format is a versioned JSON envelope: an ordered root list plus
// an id-indexed block table, mirroring the in-memory store. Decode is
// strict; files written by a newer envelope version are refused rather than
// partially read.
//
// Import is the tolerant counterpart for JSON produced by other tools. It
// walks common block-export shapes, maps foreign type names onto native
// kinds, mints fresh ids, and skips what it cannot place. Save writes
// through a temporary file and rename so a crash never leaves a truncated
// document behind.
package persist
