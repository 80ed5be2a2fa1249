// Package logging provides structured logging for the nsm CLI using slog.
//
// Console output goes through a TTY-aware text handler that colorizes levels
// when the terminal supports it. Every state change of a backup, restore or
// delete is also written to an append-only JSON log file so a failed restore
// can be reconstructed after the fact.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("backup created", "name", "BACKUP_boss_20260101120000")
//
// # Diagnostic Log File
//
//	f, err := logging.OpenFile(path)
//	handler := logging.NewMultiHandler(console, logging.NewFileHandler(f, level))
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework.
package logging
