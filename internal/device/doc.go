// Package device manages the per-user SSAID stores of one Android device.
//
// A Manager holds at most one active UserContext. SwitchTo discards it and
// loads another user's store: read, detect the encoding, convert a packed
// store to text, parse. Nothing is carried over between users.
//
// Mutate runs one attempt through the states
//
//	idle → validating → validated | rejected
//	validated → locating → located | not_found
//	located → patching → patched | inconsistent_source
//	patched → committing → committed | commit_failed
//
// and returns a MutationOutcome naming where it stopped, with the trail of
// states it passed through. Only committed touches the store. While
// patching, the store is read again and compared with what was loaded, so a
// change made behind ssaidctl's back is reported as inconsistent instead of
// being overwritten.
//
// Store operations are serialized by a weighted semaphore of size one. A
// mutation, switch, backup or reboot started while another is in flight
// fails with ErrBusy.
package device
