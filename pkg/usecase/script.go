package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m-mizutani/aderunner/pkg/domain"
	"github.com/m-mizutani/aderunner/pkg/domain/interfaces"
	"github.com/m-mizutani/aderunner/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// scriptPattern matches every supported script kind.
const scriptPattern = "*.{sh,py}"

type scriptRunner struct {
	env          interfaces.Environment
	interpreters map[model.ScriptKind]string
}

type ScriptRunnerOption func(*scriptRunner)

// WithInterpreter overrides the interpreter used for kind. The command is
// resolved through PATH when it is not a path.
func WithInterpreter(kind model.ScriptKind, command string) ScriptRunnerOption {
	return func(s *scriptRunner) {
		s.interpreters[kind] = command
	}
}

// NewScriptRunner creates a ScriptRunner that runs shell scripts with sh and
// python scripts with python3.
func NewScriptRunner(env interfaces.Environment, opts ...ScriptRunnerOption) interfaces.ScriptRunner {
	s := &scriptRunner{
		env: env,
		interpreters: map[model.ScriptKind]string{
			model.ScriptKindShell:  "sh",
			model.ScriptKindPython: "python3",
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the script at path and logs its output line by line. A
// non-zero exit code or any output on stderr is returned as an error.
func (s *scriptRunner) Run(ctx context.Context, path, dir string) error {
	logger := ctxlog.From(ctx)
	logger.Info("Executing script", slog.String("path", path))

	filePath, err := ensureFile(path)
	if err != nil {
		return err
	}

	kind, ok := model.ScriptKindOf(filePath)
	if !ok {
		return domain.ErrExecution.Wrap(goerr.New(fmt.Sprintf("unsupported script type: %s", kind),
			goerr.V("path", filePath)))
	}

	interpreter, err := exec.LookPath(s.interpreters[kind])
	if err != nil {
		return domain.ErrExecution.Wrap(goerr.Wrap(err, "interpreter not found",
			goerr.V("interpreter", s.interpreters[kind]),
			goerr.V("path", filePath)))
	}

	if err := ensureExecutable(ctx, filePath); err != nil {
		return err
	}

	logger.Info(interpreter + " " + filePath)

	result, err := s.execute(ctx, interpreter, filePath, dir)
	if err != nil {
		return domain.ErrExecution.Wrap(goerr.Wrap(err, "failed to start script", goerr.V("path", filePath)))
	}

	for _, line := range result.StdoutLines() {
		logger.Info(line)
	}

	if result.Failed() {
		msg := strings.TrimSpace(result.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(result.Stdout)
		}
		if msg == "" {
			msg = fmt.Sprintf("exit status %d", result.ExitCode)
		}
		return domain.ErrExecution.Wrap(goerr.New(fmt.Sprintf("error executing %s: %s", path, msg),
			goerr.V("path", filePath),
			goerr.V("exit_code", result.ExitCode)))
	}

	return nil
}

// execute runs the interpreter and blocks until it exits. A non-zero exit
// is reported in the result, not as an error.
func (s *scriptRunner) execute(ctx context.Context, interpreter, path, dir string) (*model.ExecutionResult, error) {
	cmd := exec.CommandContext(ctx, interpreter, path) // #nosec G204 - script path is resolved by the runner
	cmd.Dir = dir
	cmd.Env = s.env.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &model.ExecutionResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		result.ExitCode = exitErr.ExitCode()
	}

	return result, nil
}

// RunAll runs every script in dir ordered by full path and stops at the
// first failure. It returns the number of scripts found.
func (s *scriptRunner) RunAll(ctx context.Context, dir string) (int, error) {
	logger := ctxlog.From(ctx)

	dirPath, err := ensureDir(dir)
	if err != nil {
		return 0, err
	}

	matches, err := doublestar.Glob(os.DirFS(dirPath), scriptPattern, doublestar.WithFilesOnly())
	if err != nil {
		return 0, domain.ErrPrecondition.Wrap(goerr.Wrap(err, "failed to list scripts", goerr.V("dir", dirPath)))
	}

	scripts := make([]string, len(matches))
	for i, m := range matches {
		scripts[i] = filepath.Join(dirPath, m)
	}
	sort.Strings(scripts)

	if len(scripts) == 0 {
		return 0, nil
	}

	logger.Info(fmt.Sprintf("Found %d scripts", len(scripts)))
	for _, script := range scripts {
		logger.Info(" " + script)
	}

	for _, script := range scripts {
		if err := s.Run(ctx, script, ""); err != nil {
			return len(scripts), err
		}
	}

	return len(scripts), nil
}

// FindActionScript looks for <action>.sh and <action>.py in dir. Finding
// both is an error because the action would be ambiguous.
func (s *scriptRunner) FindActionScript(ctx context.Context, dir, action string) (string, error) {
	logger := ctxlog.From(ctx)
	logger.Info("Checking for action scripts", slog.String("dir", dir))

	dirPath, err := ensureDir(dir)
	if err != nil {
		return "", err
	}

	var found []string
	for _, kind := range model.ScriptKinds {
		path := filepath.Join(dirPath, kind.ScriptName(action))
		if isFile(path) {
			found = append(found, path)
		}
	}

	switch len(found) {
	case 0:
		logger.Info(fmt.Sprintf("No %s script found", action))
		return "", nil
	case 1:
		logger.Info(fmt.Sprintf("Found %s script: %s", action, found[0]))
		return found[0], nil
	default:
		return "", domain.ErrAmbiguousScript.Wrap(goerr.New(
			fmt.Sprintf("found both %s.sh and %s.py in %s, only one script file allowed", action, action, dir),
			goerr.V("scripts", found)))
	}
}

func ensureExecutable(ctx context.Context, path string) error {
	if isExecutable(path) {
		return nil
	}

	ctxlog.From(ctx).Info(fmt.Sprintf("%s is not executable, setting executable bit", path))

	info, err := os.Stat(path)
	if err != nil {
		return domain.ErrExecution.Wrap(goerr.Wrap(err, "failed to stat script", goerr.V("path", path)))
	}
	if err := os.Chmod(path, info.Mode()|0100); err != nil {
		return domain.ErrExecution.Wrap(goerr.Wrap(err, "failed to set executable bit", goerr.V("path", path)))
	}
	return nil
}

func ensureFile(path string) (string, error) {
	abs, err := canonicalPath(path)
	if err != nil {
		return "", domain.ErrPrecondition.Wrap(err)
	}
	if !isFile(abs) {
		return "", domain.ErrPrecondition.Wrap(goerr.New(abs + " does not exist or is not a file"))
	}
	return abs, nil
}

func ensureDir(path string) (string, error) {
	abs, err := canonicalPath(path)
	if err != nil {
		return "", domain.ErrPrecondition.Wrap(err)
	}
	if !isDir(abs) {
		return "", domain.ErrPrecondition.Wrap(goerr.New(abs + " does not exist or is not a directory"))
	}
	return abs, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
