package usecase

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m-mizutani/aderunner/pkg/domain"
	"github.com/m-mizutani/aderunner/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// PrepareWorkspace creates the files and directories the runner expects
// when it runs inside the runner image. With RUNNER_LOCAL_BUILD it also
// simulates the volumes and the catalog that are mounted in production.
func PrepareWorkspace(ctx context.Context, cfg *model.Config) error {
	if !cfg.InRunner {
		return nil
	}
	logger := ctxlog.From(ctx)

	if cfg.LocalBuild {
		for _, dir := range []string{cfg.ActionStorage, cfg.ActionTemp, cfg.ActionRepository} {
			logger.Debug("creating local volume", slog.String("path", dir))
			if err := os.MkdirAll(dir, 0755); err != nil {
				return domain.ErrPrecondition.Wrap(goerr.Wrap(err, "failed to create volume", goerr.V("path", dir)))
			}
		}
	}

	if err := touch(cfg.ActionOutput); err != nil {
		return err
	}

	if cfg.LocalBuild {
		if err := os.MkdirAll(cfg.CatalogItem, 0755); err != nil {
			return domain.ErrPrecondition.Wrap(goerr.Wrap(err, "failed to create catalog item", goerr.V("path", cfg.CatalogItem)))
		}
		if err := touch(cfg.CatalogItemTemplate); err != nil {
			return err
		}
	}

	return nil
}

func touch(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return domain.ErrPrecondition.Wrap(goerr.Wrap(err, "failed to create directory", goerr.V("path", path)))
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644) // #nosec G304 - path comes from runner configuration
	if err != nil {
		return domain.ErrPrecondition.Wrap(goerr.Wrap(err, "failed to create file", goerr.V("path", path)))
	}
	return f.Close()
}
