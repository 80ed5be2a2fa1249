// Package shell implements the interactive numbered-menu front end.
//
// The shell owns every prompt, confirmation and screen clear; the backup
// core it drives never reads input. A run looks like:
//
//	Noita Save Manager
//	------------------
//	1. Backup Current Save
//	2. Activate Save
//	...
//	Enter choice:
//
// Settings edits apply to the running session at once and are written to
// disk only through "Save & Return to Main Menu".
package shell
