package interfaces

import "context"

// ScriptRunner executes action scripts.
type ScriptRunner interface {
	// Run executes a single script with dir as working directory.
	Run(ctx context.Context, path, dir string) error
	// RunAll executes every script in dir in lexicographic order and returns
	// the number of scripts found.
	RunAll(ctx context.Context, dir string) (int, error)
	// FindActionScript returns the script implementing action in dir, or an
	// empty string when there is none.
	FindActionScript(ctx context.Context, dir, action string) (string, error)
}
