package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/aderunner/pkg/domain/interfaces"
	"github.com/m-mizutani/aderunner/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
)

type AuthService struct {
	cli    interfaces.AzureCLI
	env    interfaces.Environment
	config *model.Config
}

func NewAuthService(cli interfaces.AzureCLI, env interfaces.Environment, config *model.Config) interfaces.AuthService {
	return &AuthService{
		cli:    cli,
		env:    env,
		config: config,
	}
}

// Login signs the Azure CLI in with the managed identity when ARM_USE_MSI
// is set, otherwise with a service principal when its credentials are
// present, and then selects the environment subscription.
func (s *AuthService) Login(ctx context.Context) error {
	logger := ctxlog.From(ctx)
	logger.Info(">>> Signing in to Azure CLI ...")

	clientID, _ := s.env.Lookup(model.EnvAzureClientID)
	clientSecret, _ := s.env.Lookup(model.EnvAzureClientSecret)
	tenantID, _ := s.env.Lookup(model.EnvAzureTenantID)

	switch {
	case s.config.UseMSI:
		logger.Info("No credentials for Azure Service Principal")
		logger.Info("Logging in to Azure with managed identity")
		if _, err := s.cli.Run(ctx, model.NewCLICommand("login", "--identity", "--allow-no-subscriptions")); err != nil {
			return err
		}

	case clientID != "" && clientSecret != "" && tenantID != "":
		logger.Info("Found credentials for Azure Service Principal")
		logger.Info("Logging in with Service Principal")
		cmd := model.CLICommand{
			Args: []string{"login", "--service-principal",
				"-u", clientID, "-p", clientSecret, "-t", tenantID,
				"--allow-no-subscriptions"},
			Mask: true,
		}
		if _, err := s.cli.Run(ctx, cmd); err != nil {
			return err
		}

	default:
		logger.Warn("No Azure credentials found, using existing Azure CLI session")
	}

	if s.config.SubscriptionID != "" {
		logger.Info(">>> Setting subscription ...", slog.String("subscription", s.config.SubscriptionID))
		if _, err := s.cli.Run(ctx, model.NewCLICommand("account", "set", "--subscription", s.config.SubscriptionID)); err != nil {
			return err
		}
	}

	return nil
}
