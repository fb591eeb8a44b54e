// Package executor runs privileged shell commands for ssaidctl.
//
// The store lives in a directory only root can read, so every file
// operation (read, probe, convert, write, chmod, rename) is issued as a
// command line through an Executor. The core packages hold no OS-specific
// code; tests substitute a scripted fake from the executortest package or
// a Shell with an `sh -c` prefix pointed at a temporary directory.
//
// # Exit Status
//
// Execute reports a command that ran and failed through Result.ExitCode.
// Run and RunWithInput turn any non-zero exit into an *errors.ExecError so
// callers can classify it. Nothing here retries.
//
// # Quoting
//
// Paths are interpolated into command lines with Quote, and converter
// templates such as `abx2xml {in} -` are filled with Expand.
package executor
