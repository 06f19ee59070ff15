// Package credentials resolves the MiniMax API key and host for a session.
// The key is looked up, in priority order, in the MINIMAX_API_KEY environment
// variable, the project settings file, the user settings file, and the user
// auth file. Unreadable or malformed documents count as "no key here" and
// resolution moves on to the next source.
package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvAPIKey names the environment variable holding the API key.
	EnvAPIKey = "MINIMAX_API_KEY"
	// EnvAPIHost names the environment variable overriding the API host.
	EnvAPIHost = "MINIMAX_API_HOST"
	// DefaultAPIHost is used when EnvAPIHost is unset.
	DefaultAPIHost = "https://api.minimax.io"
)

// Source identifies where a key was found.
type Source string

const (
	SourceEnv     Source = "env"
	SourceProject Source = "project"
	SourceGlobal  Source = "global"
	SourceAuth    Source = "auth"
	SourceNone    Source = "none"
)

// Credentials is the outcome of a resolution.
type Credentials struct {
	APIKey     string
	APIHost    string
	Configured bool
	Source     Source
}

// Resolver looks up credentials. Zero fields fall back to the process
// environment, working directory, and home directory.
type Resolver struct {
	Getenv  func(string) string
	WorkDir string
	HomeDir string
}

// ProjectSettingsPath returns the project-scoped settings document path.
func ProjectSettingsPath(workDir string) string {
	return filepath.Join(workDir, ".pi", "settings.json")
}

// GlobalSettingsPath returns the user-global settings document path.
func GlobalSettingsPath(homeDir string) string {
	return filepath.Join(homeDir, ".pi", "agent", "settings.json")
}

// AuthPath returns the user-global auth document path.
func AuthPath(homeDir string) string {
	return filepath.Join(homeDir, ".pi", "agent", "auth.json")
}

// Resolve returns the first key found, in priority order, together with the
// API host. It never fails.
func (r Resolver) Resolve() Credentials {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	creds := Credentials{
		APIHost: resolveHost(getenv(EnvAPIHost)),
		Source:  SourceNone,
	}

	if key := strings.TrimSpace(getenv(EnvAPIKey)); key != "" {
		creds.APIKey = key
		creds.Configured = true
		creds.Source = SourceEnv

		return creds
	}

	for _, c := range r.candidates() {
		if c.path == "" {
			continue
		}

		if key := readKey(c.path); key != "" {
			creds.APIKey = key
			creds.Configured = true
			creds.Source = c.source

			return creds
		}
	}

	return creds
}

type candidate struct {
	source Source
	path   string
}

func (r Resolver) candidates() []candidate {
	workDir := r.WorkDir
	if workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			workDir = wd
		}
	}

	homeDir := r.HomeDir
	if homeDir == "" {
		if hd, err := os.UserHomeDir(); err == nil {
			homeDir = hd
		}
	}

	var out []candidate
	if workDir != "" {
		out = append(out, candidate{SourceProject, ProjectSettingsPath(workDir)})
	}

	if homeDir != "" {
		out = append(out,
			candidate{SourceGlobal, GlobalSettingsPath(homeDir)},
			candidate{SourceAuth, AuthPath(homeDir)},
		)
	}

	return out
}

func resolveHost(env string) string {
	host := strings.TrimRight(strings.TrimSpace(env), "/")
	if host == "" {
		return DefaultAPIHost
	}

	return host
}

// settingsDocument is the part of a settings or auth document this package
// reads. Everything else in the document is ignored.
type settingsDocument struct {
	MiniMax *struct {
		Key any `json:"key"`
	} `json:"minimax"`
}

// readKey extracts minimax.key from the JSON document at path. Any failure
// yields "".
func readKey(path string) string {
	data, err := os.ReadFile(path) //nolint:gosec // fixed settings locations
	if err != nil {
		return ""
	}

	var doc settingsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return ""
	}

	if doc.MiniMax == nil {
		return ""
	}

	key, ok := doc.MiniMax.Key.(string)
	if !ok {
		return ""
	}

	return strings.TrimSpace(key)
}
