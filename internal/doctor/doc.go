// Package doctor provides diagnostic checks for an nsm installation.
//
// Each [Check] inspects one thing (the settings file, the saves folder, a
// leftover restore snapshot, the running game, free disk space) and returns
// a [CheckResult]. A [Runner] runs them in order and aggregates a
// [DoctorReport]. Checks that can repair what they find implement [Fixer].
package doctor
