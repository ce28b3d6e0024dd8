package interfaces

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/aderunner/pkg/domain/model"
)

type AzureCLI interface {
	// Run executes an az command and returns its JSON output. A nil result
	// with a nil error means the command produced no output.
	Run(ctx context.Context, cmd model.CLICommand) (json.RawMessage, error)
	ShowAccount(ctx context.Context) (*model.Subscription, error)
	SetDefaults(ctx context.Context, location, group string) error
}

type AuthService interface {
	Login(ctx context.Context) error
}
