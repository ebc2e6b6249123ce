package sources

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// EnvFileInfo holds information about one processed .env file
type EnvFileInfo struct {
	Path   string            // Path to the .env file
	Exists bool              // Whether the file exists
	Loaded bool              // Whether the file was successfully parsed
	Vars   map[string]string // Variables read from this file
	Error  error             // Any error encountered while loading
}

// EnvFiles is the merged result of the .env hierarchy
type EnvFiles struct {
	Files       []EnvFileInfo
	Vars        map[string]string
	Environment string
}

// EnvLoader reads .env files hierarchically
type EnvLoader struct {
	workingDir  string
	environment string
	extra       []string
	logger      *log.Logger
}

// NewEnvLoader creates a loader for workingDir. environment selects the
// .env.<environment> files; extra files load last, in order.
func NewEnvLoader(workingDir, environment string, extra []string, logger *log.Logger) *EnvLoader {
	if workingDir == "" {
		workingDir = "."
	}
	return &EnvLoader{
		workingDir:  workingDir,
		environment: environment,
		extra:       extra,
		logger:      logger,
	}
}

// Filenames returns the files Load reads, lowest priority first:
// .env, .env.local, .env.<environment>, .env.<environment>.local, extras
func (l *EnvLoader) Filenames() []string {
	names := []string{".env", ".env.local"}
	if l.environment != "" {
		names = append(names,
			fmt.Sprintf(".env.%s", l.environment),
			fmt.Sprintf(".env.%s.local", l.environment),
		)
	}
	for _, extra := range l.extra {
		names = append(names, extra)
	}

	paths := make([]string, len(names))
	for i, name := range names {
		if filepath.IsAbs(name) {
			paths[i] = name
		} else {
			paths[i] = filepath.Join(l.workingDir, name)
		}
	}
	return paths
}

// Load reads every existing file; later files override earlier ones. A
// file that exists but cannot be parsed is an error.
func (l *EnvLoader) Load() (*EnvFiles, error) {
	result := &EnvFiles{
		Vars:        make(map[string]string),
		Environment: l.environment,
	}

	for _, path := range l.Filenames() {
		info := loadFile(path)
		result.Files = append(result.Files, info)

		switch {
		case !info.Exists:
			l.debug("env file skipped (not found)", "path", path)
			continue
		case info.Error != nil:
			return result, fmt.Errorf("failed to load %s: %w", path, info.Error)
		}

		l.debug("env file loaded", "path", path, "vars", len(info.Vars))
		for k, v := range info.Vars {
			result.Vars[k] = v
		}
	}

	return result, nil
}

func (l *EnvLoader) debug(msg string, keyvals ...interface{}) {
	if l.logger != nil {
		l.logger.Debug(msg, keyvals...)
	}
}

func loadFile(path string) EnvFileInfo {
	info := EnvFileInfo{Path: path, Vars: make(map[string]string)}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return info
	}
	info.Exists = true

	vars, err := godotenv.Read(path)
	if err != nil {
		info.Error = err
		return info
	}

	info.Vars = vars
	info.Loaded = true
	return info
}
