// Package registry holds the structured view of a settings store and
// computes single-record edits against it.
//
// # Parsing
//
// Parse reads every <setting> element of the text form into a Record, in
// document order, keyed by its package attribute:
//
//	<setting id="1" name="10120" value="abcdef0123456789" package="com.example.app"
//	         defaultValue="0000000000000000" defaultSysSet="false" tag="200" />
//
// # Editing
//
// Apply never re-serializes the document. It locates the one <setting>
// tag for the package in the retained raw text and replaces the bytes of
// its value attribute, so unrelated records keep their exact formatting.
// If the attribute no longer holds the value that was loaded, the edit is
// refused with ErrConsistency instead of guessing.
//
// A patch moves through these states:
//
//	Idle -> Validating -> Validated | Rejected
//	Validated -> Locating -> Located | NotFound
//	Located -> Patching -> Patched | InconsistentSource
//	Patched -> Committing -> Committed | CommitFailed
//
// Apply covers everything up to Patched; committing is the caller's job,
// after which Registry.Accept adopts the patch.
//
// # Tokens
//
// A token is 16 hex characters. ValidateToken accepts either case and
// normalizes to lowercase. TokenGenerator draws each nibble independently
// and uniformly.
package registry
