package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/aderunner/pkg/domain"
	"github.com/m-mizutani/aderunner/pkg/domain/interfaces"
	"github.com/m-mizutani/aderunner/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

const timestampLayout = "20060102150405"

// ConfigResolver builds the runner configuration from environment variables.
type ConfigResolver struct {
	env           interfaces.Environment
	now           func() time.Time
	baseDir       string
	actionsDir    string
	entrypointDir string
}

type ConfigOption func(*ConfigResolver)

// WithClock replaces the clock used for ADE_TIMESTAMP.
func WithClock(now func() time.Time) ConfigOption {
	return func(r *ConfigResolver) {
		r.now = now
	}
}

// WithBaseDirectory sets the directory holding actions.d and entrypoint.d
// when not running inside the runner image. Defaults to the directory of
// the executable.
func WithBaseDirectory(dir string) ConfigOption {
	return func(r *ConfigResolver) {
		r.baseDir = dir
	}
}

func WithActionsDirectory(dir string) ConfigOption {
	return func(r *ConfigResolver) {
		r.actionsDir = dir
	}
}

func WithEntrypointDirectory(dir string) ConfigOption {
	return func(r *ConfigResolver) {
		r.entrypointDir = dir
	}
}

func NewConfigResolver(env interfaces.Environment, opts ...ConfigOption) *ConfigResolver {
	r := &ConfigResolver{
		env: env,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Getenv returns the value of the named variable. When the variable is
// unset and has legacy names, the first legacy name holding a value is used
// and its value is copied to the current name.
func (r *ConfigResolver) Getenv(name string) (string, error) {
	v := model.LookupVariable(name)

	if value, _ := r.env.Lookup(v.Name); value != "" {
		return value, nil
	}

	for _, legacy := range v.Legacy {
		value, _ := r.env.Lookup(legacy)
		if value == "" {
			continue
		}
		if err := r.env.Set(v.Name, value); err != nil {
			return "", err
		}
		return value, nil
	}

	return "", nil
}

// Bool reports whether the named variable is set to a true value. Any
// non-empty value other than a strconv false literal is true.
func (r *ConfigResolver) Bool(name string) bool {
	value, err := r.Getenv(name)
	if err != nil || value == "" {
		return false
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return true
}

// Debug reads ADE_DEBUG on every call.
func (r *ConfigResolver) Debug() bool {
	return r.Bool(model.EnvDebug)
}

// Resolve reads every recognized variable, derives composite values and
// publishes them back to the environment.
func (r *ConfigResolver) Resolve() (*model.Config, error) {
	values := make(map[string]string, len(model.Variables))
	var missing []string

	for _, v := range model.Variables {
		value, err := r.Getenv(v.Name)
		if err != nil {
			return nil, err
		}
		if v.Required && value == "" {
			missing = append(missing, v.Name)
		}
		values[v.Name] = value
	}

	if len(missing) > 0 {
		return nil, domain.ErrConfiguration.Wrap(
			goerr.New(fmt.Sprintf("%s required environment variable not set", strings.Join(missing, ", ")),
				goerr.V("missing", missing)),
		)
	}

	cfg := &model.Config{
		ProjectName:         values[model.EnvProjectName],
		DevCenterName:       values[model.EnvDevCenterName],
		ActionName:          values[model.EnvActionName],
		ActionOutput:        values[model.EnvActionOutput],
		ActionStorage:       values[model.EnvActionStorage],
		ActionTemp:          values[model.EnvActionTemp],
		ActionParameters:    values[model.EnvActionParameters],
		CatalogItemName:     values[model.EnvCatalogItem],
		EnvironmentType:     values[model.EnvEnvironmentType],
		EnvironmentName:     values[model.EnvEnvironmentName],
		EnvironmentLocation: values[model.EnvEnvironmentLocation],
		SubscriptionID:      values[model.EnvSubscriptionID],
		ResourceGroupName:   values[model.EnvResourceGroupName],
		TenantID:            values[model.EnvARMTenantID],
		ARMSubscriptionID:   values[model.EnvARMSubscriptionID],
		UseMSI:              r.Bool(model.EnvUseMSI),
		InRunner:            r.Bool(model.EnvRunner),
		LocalBuild:          r.Bool(model.EnvLocalBuild),
		Timestamp:           r.now().UTC().Format(timestampLayout),
		ActionRepository:    model.ActionRepository,
		Debug:               r.Debug,
	}

	catalog, err := canonicalPath(values[model.EnvCatalog])
	if err != nil {
		return nil, domain.ErrConfiguration.Wrap(err)
	}
	cfg.Catalog = catalog

	item := cfg.CatalogItemName
	if !filepath.IsAbs(item) {
		item = filepath.Join(cfg.Catalog, item)
	}
	if cfg.CatalogItem, err = canonicalPath(item); err != nil {
		return nil, domain.ErrConfiguration.Wrap(err)
	}

	cfg.TemplatePath = normalizeTemplatePath(values[model.EnvTemplatePath])
	if cfg.CatalogItemTemplate, err = canonicalPath(filepath.Join(cfg.CatalogItem, cfg.TemplatePath)); err != nil {
		return nil, domain.ErrConfiguration.Wrap(err)
	}

	cfg.Subscription = "/subscriptions/" + cfg.SubscriptionID
	cfg.ResourceGroupID = cfg.Subscription + "/resourceGroups/" + cfg.ResourceGroupName

	if err := r.resolveDirectories(cfg); err != nil {
		return nil, err
	}

	published := []struct{ key, value string }{
		{model.EnvTimestamp, cfg.Timestamp},
		{model.EnvCatalog, cfg.Catalog},
		{model.EnvCatalogItemName, cfg.CatalogItemName},
		{model.EnvCatalogItem, cfg.CatalogItem},
		{model.EnvCatalogItemTemplate, cfg.CatalogItemTemplate},
		{model.EnvSubscription, cfg.Subscription},
		{model.EnvResourceGroupID, cfg.ResourceGroupID},
		{model.EnvActionsDirectory, cfg.ActionsDirectory},
		{model.EnvEntrypointDirectory, cfg.EntrypointDirectory},
	}
	for _, p := range published {
		if err := r.env.Set(p.key, p.value); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (r *ConfigResolver) resolveDirectories(cfg *model.Config) error {
	cfg.ActionsDirectory = r.actionsDir
	cfg.EntrypointDirectory = r.entrypointDir

	if cfg.ActionsDirectory != "" && cfg.EntrypointDirectory != "" {
		return nil
	}

	var actions, entrypoint string
	if cfg.InRunner {
		actions, entrypoint = model.RunnerActionsDirectory, model.RunnerEntrypointDirectory
	} else {
		base := r.baseDir
		if base == "" {
			exe, err := os.Executable()
			if err != nil {
				return domain.ErrConfiguration.Wrap(goerr.Wrap(err, "failed to locate executable"))
			}
			if base, err = canonicalPath(filepath.Dir(exe)); err != nil {
				return domain.ErrConfiguration.Wrap(err)
			}
		}
		actions = filepath.Join(base, "actions.d")
		entrypoint = filepath.Join(base, "entrypoint.d")
	}

	if cfg.ActionsDirectory == "" {
		cfg.ActionsDirectory = actions
	}
	if cfg.EntrypointDirectory == "" {
		cfg.EntrypointDirectory = entrypoint
	}
	return nil
}

// normalizeTemplatePath strips a leading "./" and then a leading "/" so the
// template path is always relative to the catalog item.
func normalizeTemplatePath(path string) string {
	path = strings.TrimPrefix(path, "./")
	return strings.TrimPrefix(path, "/")
}

// canonicalPath returns the absolute form of path with symlinks resolved.
// Components that do not exist yet are kept as they are.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve absolute path", goerr.V("path", path))
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}

	parent := filepath.Dir(abs)
	if parent == abs {
		return abs, nil
	}
	resolvedParent, err := canonicalPath(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(abs)), nil
}
