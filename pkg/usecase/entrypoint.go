package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m-mizutani/aderunner/pkg/domain"
	"github.com/m-mizutani/aderunner/pkg/domain/interfaces"
	"github.com/m-mizutani/aderunner/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

type EntrypointUseCase struct {
	config      *model.Config
	env         interfaces.Environment
	runner      interfaces.ScriptRunner
	cli         interfaces.AzureCLI
	auth        interfaces.AuthService
	setDefaults bool
}

type EntrypointUseCaseOptions struct {
	Config *model.Config
	Env    interfaces.Environment
	Runner interfaces.ScriptRunner
	CLI    interfaces.AzureCLI
	Auth   interfaces.AuthService
	// SetDefaults configures the Azure CLI default location and resource
	// group after signing in.
	SetDefaults bool
}

func NewEntrypointUseCase(opts EntrypointUseCaseOptions) *EntrypointUseCase {
	return &EntrypointUseCase{
		config:      opts.Config,
		env:         opts.Env,
		runner:      opts.Runner,
		cli:         opts.CLI,
		auth:        opts.Auth,
		setDefaults: opts.SetDefaults,
	}
}

// Execute runs the entrypoint scripts, signs in to Azure when running in the
// runner and then runs the script for the configured action. cmdInput is
// the optional script path given on the command line.
func (u *EntrypointUseCase) Execute(ctx context.Context, cmdInput string) error {
	logger := ctxlog.From(ctx)

	logger.Info("##################################")
	logger.Info("Azure Deployment Environment Runner")
	logger.Info("##################################")
	logger.Info(fmt.Sprintf("IN_RUNNER: %t", u.config.InRunner))

	LogEnvironment(ctx, u.env)

	if !isDir(u.config.CatalogItem) {
		return domain.ErrPrecondition.Wrap(goerr.New(fmt.Sprintf("Catalog item %s not found", u.config.CatalogItem)))
	}
	if !isFile(u.config.CatalogItemTemplate) {
		return domain.ErrPrecondition.Wrap(goerr.New(fmt.Sprintf("Catalog item template %s not found", u.config.CatalogItemTemplate)))
	}

	logger.Info("Checking for scripts in " + u.config.EntrypointDirectory)
	if isDir(u.config.EntrypointDirectory) {
		n, err := u.runner.RunAll(ctx, u.config.EntrypointDirectory)
		if err != nil {
			return err
		}
		if n == 0 {
			logger.Info("No scripts found in " + u.config.EntrypointDirectory)
		}
	}

	if u.config.InRunner {
		if err := u.auth.Login(ctx); err != nil {
			return err
		}
		if u.setDefaults {
			if err := u.cli.SetDefaults(ctx, u.config.EnvironmentLocation, u.config.ResourceGroupName); err != nil {
				return err
			}
		}
	}

	if sub, err := u.cli.ShowAccount(ctx); err != nil {
		logger.Warn("Failed to get current subscription", slog.String("error", err.Error()))
	} else {
		logger.Info("Current subscription: " + sub.String())
	}

	path, err := u.ResolveActionScript(ctx, cmdInput)
	if err != nil {
		return err
	}

	if err := u.runner.Run(ctx, path, u.config.CatalogItem); err != nil {
		return err
	}

	logger.Info("Done.")
	return nil
}

// ResolveActionScript picks the script to run. The first match wins:
//  1. a script path given on the command line
//  2. <action>.sh or <action>.py in the catalog item directory
//  3. <action>.sh or <action>.py in the runner actions directory
func (u *EntrypointUseCase) ResolveActionScript(ctx context.Context, cmdInput string) (string, error) {
	logger := ctxlog.From(ctx)

	if cmdInput != "" {
		logger.Info("CMD input found: " + cmdInput)

		path, err := canonicalPath(cmdInput)
		if err != nil {
			return "", domain.ErrPrecondition.Wrap(err)
		}

		if !isFile(path) {
			logger.Info(fmt.Sprintf("CMD input script is not a file, ignoring: (%s)", path))
		} else if _, ok := model.ScriptKindOf(path); !ok {
			return "", domain.ErrExecution.Wrap(goerr.New(fmt.Sprintf(
				"Invalid script type provided in CMD input: %s (only .sh and .py scripts are supported)", path)))
		} else {
			return path, nil
		}
	}

	for _, dir := range []string{u.config.CatalogItem, u.config.ActionsDirectory} {
		path, err := u.runner.FindActionScript(ctx, dir, u.config.ActionName)
		if err != nil {
			return "", err
		}
		if path != "" {
			return path, nil
		}
	}

	return "", domain.ErrPrecondition.Wrap(goerr.New("No script found for action: " + u.config.ActionName))
}
