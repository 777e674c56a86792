package axe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
)

// ScriptFileName is the expected file name of the bundled rule engine.
const ScriptFileName = "axe.min.js"

// ErrScriptNotFound is returned when the rule engine script cannot be
// located in any of the search paths.
var ErrScriptNotFound = errors.New("axe-core script not found")

// Runtime locates and caches the rule engine script source.
//
// The source is loaded lazily on first use and never reloaded: it is
// immutable after load and safe for concurrent reuse across sessions.
// A Runtime with an empty path searches the well-known locations in
// DefaultScriptPaths order.
type Runtime struct {
	// path is an explicit script location. Empty means search.
	path string

	once   sync.Once
	source string
	err    error
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithScriptPath sets an explicit script path, bypassing the search.
func WithScriptPath(path string) Option {
	return func(r *Runtime) {
		r.path = path
	}
}

// NewRuntime creates a Runtime with the given options.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultScriptPaths returns the locations searched for the rule engine
// script, in order: the XDG data directory, the working directory, and
// an npm-installed axe-core package next to the working directory.
func DefaultScriptPaths() []string {
	return []string{
		filepath.Join(xdg.DataHome, "a11yscan", ScriptFileName),
		ScriptFileName,
		filepath.Join("node_modules", "axe-core", ScriptFileName),
	}
}

// Source returns the rule engine program text, reading it from disk on
// the first call. Subsequent calls return the cached text; a load
// failure is likewise cached and returned on every call.
func (r *Runtime) Source() (string, error) {
	r.once.Do(func() {
		r.source, r.err = r.load()
	})
	return r.source, r.err
}

// load resolves the script path and reads the file.
func (r *Runtime) load() (string, error) {
	if r.path != "" {
		data, err := os.ReadFile(r.path) //nolint:gosec // User-provided script path is intentional
		if err != nil {
			return "", fmt.Errorf("failed to read axe-core script %s: %w", r.path, err)
		}
		return string(data), nil
	}

	paths := DefaultScriptPaths()
	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec // Well-known search paths
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read axe-core script %s: %w", path, err)
		}
	}

	return "", fmt.Errorf("%w: searched %v (install with: npm install axe-core, "+
		"or place %s in the data directory)", ErrScriptNotFound, paths, ScriptFileName)
}
