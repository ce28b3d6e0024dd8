package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/aderunner/pkg/domain"
	"github.com/m-mizutani/aderunner/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func RunEntrypoint(ctx context.Context, cmd *cli.Command) error {
	config := NewConfigFromCommand(cmd)
	env := usecase.NewOSEnvironment()
	resolver := usecase.NewConfigResolver(env, config.ResolverOptions()...)

	level := new(slog.LevelVar)
	if resolver.Debug() {
		level.Set(slog.LevelDebug)
	}
	ctx = ctxlog.With(ctx, newLogger(os.Stderr, config.LogFormat, level))

	cfg, err := resolver.Resolve()
	if err != nil {
		return err
	}

	if err := usecase.PrepareWorkspace(ctx, cfg); err != nil {
		return err
	}

	logFile, err := os.OpenFile(cfg.ActionOutput, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644) // #nosec G304 - path comes from runner configuration
	if err != nil {
		return domain.ErrPrecondition.Wrap(goerr.Wrap(err, "failed to open action output", goerr.V("path", cfg.ActionOutput)))
	}
	defer logFile.Close()

	ctx = ctxlog.With(ctx, newLogger(io.MultiWriter(os.Stderr, logFile), config.LogFormat, level))
	// main prints the returned error to the console
	fileLogger := newLogger(logFile, config.LogFormat, level)

	azCLI := usecase.NewAzureCLI(env, cfg.Debug, usecase.WithAzPath(config.AzPath))
	entrypoint := usecase.NewEntrypointUseCase(usecase.EntrypointUseCaseOptions{
		Config:      cfg,
		Env:         env,
		Runner:      usecase.NewScriptRunner(env, config.RunnerOptions()...),
		CLI:         azCLI,
		Auth:        usecase.NewAuthService(azCLI, env, cfg),
		SetDefaults: config.SetDefaults,
	})

	if err := entrypoint.Execute(ctx, cmd.Args().First()); err != nil {
		fileLogger.Error(err.Error())
		return err
	}

	return nil
}
