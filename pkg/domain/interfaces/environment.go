package interfaces

// Environment is the process environment shared with child scripts.
type Environment interface {
	Lookup(key string) (string, bool)
	Set(key, value string) error
	// Environ returns the environment in "KEY=value" form for child processes.
	Environ() []string
}
