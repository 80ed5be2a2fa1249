// Package backup creates, lists, restores and deletes Noita save backups.
//
// Backups live next to the active save slot inside the saves folder:
//
//	Nolla_Games_Noita/
//	├── save00/                          active save slot
//	├── BACKUP_before-boss_20240101120000/
//	├── BACKUP_seed-run_20240102083000/
//	└── BACKUP_TEMP/                     only while a restore is running
//
// A backup's name is the configured prefix, the user's label, an underscore
// and a local YYYYMMDDHHMMSS timestamp (see [NameBackup]). [List] sorts
// names lexicographically, which is chronological only among backups that
// share a label.
//
// # Restoring
//
// [Restorer] replaces the save slot with a backup in three steps:
//
//  1. Snapshot save00 into <prefix>TEMP.
//  2. Remove save00 and copy the backup into its place.
//  3. Remove <prefix>TEMP.
//
// If step 2 fails the snapshot is copied back and the returned
// [*RestoreError] has Rolled set; <prefix>TEMP stays on disk. If the copy
// back fails too, the error is marked with errors.ErrFatalInconsistency and
// <prefix>TEMP is the only complete copy of the save. A restore is refused
// while <prefix>TEMP exists.
//
// [Manager] wires these pieces to a [settings.Settings] value and reports
// each user-level operation as an [Outcome].
package backup
