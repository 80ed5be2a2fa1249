// Package paths resolves the locations nsm reads and writes.
//
// Per-user directories follow the XDG Base Directory conventions through
// github.com/adrg/xdg, with environment overrides for tests and portable
// installs:
//
//	| What          | Default                               | Override        |
//	|---------------|---------------------------------------|-----------------|
//	| settings file | <XDG_CONFIG_HOME>/nsm/variables.txt   | NSM_CONFIG_DIR  |
//	| app config    | <XDG_CONFIG_HOME>/nsm/config.yaml     | NSM_CONFIG_DIR  |
//	| log file      | <XDG_STATE_HOME>/nsm/noita_save_manager.log | NSM_STATE_DIR |
//
// Game defaults mirror a Steam install on Windows: saves live under
// <home>/AppData/LocalLow/Nolla_Games_Noita and the active save is the
// save00 directory inside it.
package paths
