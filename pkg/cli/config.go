package cli

import (
	"github.com/m-mizutani/aderunner/pkg/domain/model"
	"github.com/m-mizutani/aderunner/pkg/usecase"
	"github.com/urfave/cli/v3"
)

type Config struct {
	ActionsDir    string
	EntrypointDir string
	AzPath        string
	Shell         string
	Python        string
	LogFormat     string
	SetDefaults   bool
}

func NewConfig() *Config {
	return &Config{
		AzPath:    "az",
		Shell:     "sh",
		Python:    "python3",
		LogFormat: logFormatText,
	}
}

func NewConfigFromCommand(cmd *cli.Command) *Config {
	return &Config{
		ActionsDir:    cmd.String("actions-dir"),
		EntrypointDir: cmd.String("entrypoint-dir"),
		AzPath:        cmd.String("az-path"),
		Shell:         cmd.String("shell"),
		Python:        cmd.String("python"),
		LogFormat:     cmd.String("log-format"),
		SetDefaults:   cmd.Bool("az-defaults"),
	}
}

func (c *Config) ResolverOptions() []usecase.ConfigOption {
	return []usecase.ConfigOption{
		usecase.WithActionsDirectory(c.ActionsDir),
		usecase.WithEntrypointDirectory(c.EntrypointDir),
	}
}

func (c *Config) RunnerOptions() []usecase.ScriptRunnerOption {
	var opts []usecase.ScriptRunnerOption
	if c.Shell != "" {
		opts = append(opts, usecase.WithInterpreter(model.ScriptKindShell, c.Shell))
	}
	if c.Python != "" {
		opts = append(opts, usecase.WithInterpreter(model.ScriptKindPython, c.Python))
	}
	return opts
}

func DefineFlags() []cli.Flag {
	defaults := NewConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "actions-dir",
			Usage: "Directory holding the runner action scripts (default: /actions.d in the runner)",
		},
		&cli.StringFlag{
			Name:  "entrypoint-dir",
			Usage: "Directory holding the startup scripts (default: /entrypoint.d in the runner)",
		},
		&cli.StringFlag{
			Name:    "az-path",
			Usage:   "Azure CLI executable",
			Value:   defaults.AzPath,
			Sources: cli.EnvVars("RUNNER_AZ_PATH"),
		},
		&cli.StringFlag{
			Name:    "shell",
			Usage:   "Interpreter for .sh scripts",
			Value:   defaults.Shell,
			Sources: cli.EnvVars("RUNNER_SHELL"),
		},
		&cli.StringFlag{
			Name:    "python",
			Usage:   "Interpreter for .py scripts",
			Value:   defaults.Python,
			Sources: cli.EnvVars("RUNNER_PYTHON"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Log format (text or json)",
			Value:   defaults.LogFormat,
			Sources: cli.EnvVars("RUNNER_LOG_FORMAT"),
		},
		&cli.BoolFlag{
			Name:    "az-defaults",
			Usage:   "Set the Azure CLI default location and resource group after signing in",
			Sources: cli.EnvVars("RUNNER_AZ_DEFAULTS"),
		},
	}
}
