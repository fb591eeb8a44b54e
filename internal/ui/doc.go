// Package ui provides semantic text formatting for CLI output.
//
// Formatters render content by meaning (commands, paths, package names,
// tokens) and adapt to the terminal: colorized when supported, plain text
// decorations when NO_COLOR is set or the terminal cannot show color.
//
//	ui.Code.Sprint("ssaidctl apps list")     // Commands
//	ui.Path.Sprint(storePath)                // Store and backup paths
//	ui.Package.Sprint("com.example.app")     // Application identifiers
//	ui.Token.Sprint("abcdef0123456789")      // SSAID values
//	ui.User.Sprint("10")                     // Device users
//	ui.Success.Sprint(ui.CheckMark)          // Success indicators
//	ui.Muted.Sprint("default")               // Secondary text
//
// Without color, Code gets `backticks`, Package gets 'single quotes',
// User gets a "user " prefix and Muted gets (parentheses).
package ui
