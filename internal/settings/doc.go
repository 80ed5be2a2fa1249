// Package settings holds the user-editable paths nsm works with and the
// flat key=value file they persist to.
//
// The file format is one key=value pair per line with no quoting, escaping
// or comments. Values are trimmed of surrounding whitespace. Keys nsm does
// not know are kept and written back unchanged.
//
// Loading is all or nothing: a missing file, or any line that is not
// exactly one key and one value separated by a single "=", yields the
// built-in defaults. Saving writes the whole mapping atomically.
package settings
