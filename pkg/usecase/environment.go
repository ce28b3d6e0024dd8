package usecase

import (
	"os"
	"sort"

	"github.com/m-mizutani/aderunner/pkg/domain"
	"github.com/m-mizutani/aderunner/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

type osEnvironment struct{}

// NewOSEnvironment returns the process environment.
func NewOSEnvironment() interfaces.Environment {
	return &osEnvironment{}
}

func (e *osEnvironment) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

func (e *osEnvironment) Set(key, value string) error {
	if err := os.Setenv(key, value); err != nil {
		return domain.ErrConfiguration.Wrap(goerr.Wrap(err, "failed to set environment variable", goerr.V("key", key)))
	}
	return nil
}

func (e *osEnvironment) Environ() []string {
	return os.Environ()
}

// MapEnvironment is an in-memory environment. Child processes see only the
// variables it holds plus PATH inherited from the process.
type MapEnvironment struct {
	vars map[string]string
}

func NewMapEnvironment(vars map[string]string) *MapEnvironment {
	env := &MapEnvironment{vars: make(map[string]string, len(vars))}
	for k, v := range vars {
		env.vars[k] = v
	}
	return env
}

func (e *MapEnvironment) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

func (e *MapEnvironment) Set(key, value string) error {
	e.vars[key] = value
	return nil
}

func (e *MapEnvironment) Environ() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys)+1)
	if _, ok := e.vars["PATH"]; !ok {
		env = append(env, "PATH="+os.Getenv("PATH"))
	}
	for _, k := range keys {
		env = append(env, k+"="+e.vars[k])
	}
	return env
}
