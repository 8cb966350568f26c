package util

import (
	"os"
	"path/filepath"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// SkillmirrorConfigPath returns the skillmirror configuration directory
func SkillmirrorConfigPath() string {
	return filepath.Join(HomeDir(), ".skillmirror")
}

// DefaultConfigFile returns the default configuration file path
func DefaultConfigFile() string {
	return filepath.Join(SkillmirrorConfigPath(), "config.yaml")
}

// DefaultStateFile returns the default enablement state file path
func DefaultStateFile() string {
	return filepath.Join(SkillmirrorConfigPath(), "state.json")
}

// DefaultLibraryPath returns the default canonical skill library directory
func DefaultLibraryPath() string {
	return filepath.Join(SkillmirrorConfigPath(), "library")
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) string {
	if path == "~" {
		return HomeDir()
	}
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(HomeDir(), path[2:])
	}
	return path
}
