package source

import (
	"os"
	"path/filepath"
)

// LogFileName is the telemetry log Gemini CLI writes inside its data directory.
const LogFileName = "telemetry.log"

// DefaultGeminiDir returns ~/.gemini.
func DefaultGeminiDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".gemini")
}

// LogPath returns the telemetry log path inside geminiDir.
func LogPath(geminiDir string) string {
	return filepath.Join(geminiDir, LogFileName)
}

// FindLogFiles returns the telemetry logs present in geminiDir.
// A missing log is not an error; the result is simply empty.
func FindLogFiles(geminiDir string) ([]string, error) {
	path := LogPath(geminiDir)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}

	return []string{path}, nil
}
