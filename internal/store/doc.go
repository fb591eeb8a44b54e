// Package store reads, classifies, converts and writes the settings store.
//
// A store is either an XML document or the packed binary (ABX) encoding
// of the same schema. Detect sniffs the first bytes; the Codec delegates
// conversion to the device's abx2xml/xml2abx tools; the Committer writes
// new content through a temporary file so the canonical path is either
// the old store or the fully written new one.
//
// All file access goes through an executor.Executor.
package store
