// Package config provides configuration management for the nsm CLI itself.
//
// This is distinct from the game settings in package settings: config.yaml
// says where nsm keeps its settings file and diagnostic log, and how the
// log is formatted. Every key can also be set through an NSM_ prefixed
// environment variable.
//
// # Configuration File
//
// The file is searched for in the working directory, then in
// $XDG_CONFIG_HOME/nsm (or $NSM_CONFIG_DIR):
//
//	version: 1
//	settings_file: ~/.config/nsm/variables.txt
//	log_file: ~/.local/state/nsm/noita_save_manager.log
//	log_format: text
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("") // search default locations
//	if err != nil {
//	    return err
//	}
//
// Loading an explicit path that does not exist is an error; a missing file
// in the default locations is not. Loaded configurations are validated.
package config
