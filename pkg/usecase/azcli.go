package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os/exec"
	"slices"
	"strings"

	"github.com/m-mizutani/aderunner/pkg/domain"
	"github.com/m-mizutani/aderunner/pkg/domain/interfaces"
	"github.com/m-mizutani/aderunner/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// resourceNotFoundMarker is printed by the Azure CLI when the requested
// resource does not exist.
const resourceNotFoundMarker = "Code: ResourceNotFound"

// IsResourceNotFound reports whether stderr of a failed az command means
// the resource does not exist. Such failures yield an empty result instead
// of an error.
func IsResourceNotFound(stderr string) bool {
	return strings.Contains(stderr, resourceNotFoundMarker)
}

type azureCLI struct {
	path  string
	env   interfaces.Environment
	debug model.DebugFlag
}

type AzureCLIOption func(*azureCLI)

// WithAzPath sets the az executable. Defaults to "az" looked up in PATH.
func WithAzPath(path string) AzureCLIOption {
	return func(c *azureCLI) {
		if path != "" {
			c.path = path
		}
	}
}

func NewAzureCLI(env interfaces.Environment, debug model.DebugFlag, opts ...AzureCLIOption) interfaces.AzureCLI {
	c := &azureCLI{
		path:  "az",
		env:   env,
		debug: debug,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *azureCLI) Run(ctx context.Context, command model.CLICommand) (json.RawMessage, error) {
	logger := ctxlog.From(ctx)

	args := slices.Clone(command.Args)
	if len(args) > 0 && args[0] == "az" {
		args = args[1:]
	}
	if len(args) == 0 {
		return nil, domain.ErrExternalTool.Wrap(goerr.New("empty az command"))
	}

	az, err := exec.LookPath(c.path)
	if err != nil {
		return nil, domain.ErrExternalTool.Wrap(goerr.Wrap(err, "az not found", goerr.V("path", c.path)))
	}

	if c.debug.Enabled() && !slices.Contains(args, "--debug") {
		args = append(args, "--debug")
	}

	logger.Info(">>> Running az cli command: " + commandLine(args, command.Mask) + " ...")

	cmd := exec.CommandContext(ctx, az, args...) // #nosec G204 - arguments are built by the runner
	cmd.Env = c.env.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, domain.ErrExternalTool.Wrap(goerr.Wrap(err, "failed to run az"))
		}
		if IsResourceNotFound(stderr.String()) {
			logger.Debug("az resource not found", slog.String("command", args[0]))
			return nil, nil
		}

		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "azure cli command failed"
		}
		return nil, domain.ErrExternalTool.Wrap(goerr.New(msg, goerr.V("exit_code", exitErr.ExitCode())))
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		return nil, nil
	}

	if !command.Quiet {
		for _, line := range strings.Split(string(out), "\n") {
			logger.Info(line)
		}
	}

	if !json.Valid(out) {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = string(out)
		}
		return nil, domain.ErrExternalTool.Wrap(goerr.New("could not decode response json: " + detail))
	}

	return json.RawMessage(out), nil
}

func (c *azureCLI) ShowAccount(ctx context.Context) (*model.Subscription, error) {
	raw, err := c.Run(ctx, model.NewCLICommand("account", "show"))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrExternalTool.Wrap(goerr.New("no active subscription"))
	}

	var sub model.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, domain.ErrExternalTool.Wrap(goerr.Wrap(err, "could not decode response json"))
	}
	return &sub, nil
}

// SetDefaults configures the default location and resource group of the
// Azure CLI for the scripts that run after it.
func (c *azureCLI) SetDefaults(ctx context.Context, location, group string) error {
	commands := []model.CLICommand{
		model.NewCLICommand("configure", "-d", "location="+location),
		model.NewCLICommand("configure", "-d", "group="+group),
		model.NewCLICommand("configure", "-l"),
	}
	for _, cmd := range commands {
		if _, err := c.Run(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

// commandLine renders args for the log. With mask, everything from the
// first flag onwards is replaced so credentials are not written out. A
// masked command without flags keeps only its first argument.
func commandLine(args []string, mask bool) string {
	line := append([]string{"az"}, args...)
	if !mask {
		return strings.Join(line, " ")
	}
	for i, a := range line {
		if strings.HasPrefix(a, "-") {
			return strings.Join(line[:i], " ") + " ****"
		}
	}
	return strings.Join(line[:min(len(line), 2)], " ") + " ****"
}
