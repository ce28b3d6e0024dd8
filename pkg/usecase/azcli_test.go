package usecase_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/aderunner/pkg/domain/interfaces"
	"github.com/m-mizutani/aderunner/pkg/domain/model"
	"github.com/m-mizutani/aderunner/pkg/usecase"
	"github.com/m-mizutani/gt"
)

const fakeAz = `#!/bin/sh
echo "$@" >> "$AZ_ARGS_FILE"
case "$1" in
  account)
    echo '{"id":"sub-1","name":"Dev","tenantId":"tenant-1","state":"Enabled","isDefault":true,"user":{"name":"app","type":"servicePrincipal"}}'
    ;;
  group)
    echo '{"name":"rg-env1",'
    echo ' "location":"eastus"}'
    ;;
  missing)
    echo "ERROR: (ResourceNotFound) The Resource was not found." >&2
    echo "Code: ResourceNotFound" >&2
    exit 3
    ;;
  broken)
    echo "ERROR: something went wrong" >&2
    exit 1
    ;;
  text)
    echo "not json"
    ;;
esac
`

// newFakeAzureCLI returns a client backed by a shell script that appends its
// arguments to the returned file.
func newFakeAzureCLI(t *testing.T, debug model.DebugFlag) (interfaces.AzureCLI, string) {
	t.Helper()
	dir := tempDir(t)
	az := writeScript(t, filepath.Join(dir, "az"), fakeAz, 0755)
	argsFile := filepath.Join(dir, "args.txt")

	env := usecase.NewMapEnvironment(map[string]string{"AZ_ARGS_FILE": argsFile})
	return usecase.NewAzureCLI(env, debug, usecase.WithAzPath(az)), argsFile
}

func readArgs(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestAzureCLIRun(t *testing.T) {
	t.Run("returns json output", func(t *testing.T) {
		ctx, logs := logContext(t)
		cli, _ := newFakeAzureCLI(t, nil)

		raw, err := cli.Run(ctx, model.NewCLICommand("group", "show", "-n", "rg-env1"))
		gt.NoError(t, err)

		var group struct {
			Name     string `json:"name"`
			Location string `json:"location"`
		}
		gt.NoError(t, json.Unmarshal(raw, &group))
		gt.Equal(t, group.Name, "rg-env1")
		gt.Equal(t, group.Location, "eastus")
		gt.True(t, strings.Contains(logs.String(), "az group show -n rg-env1"))
	})

	t.Run("leading az is dropped", func(t *testing.T) {
		ctx, _ := logContext(t)
		cli, argsFile := newFakeAzureCLI(t, nil)

		_, err := cli.Run(ctx, model.NewCLICommand("az", "group", "list"))
		gt.NoError(t, err)
		gt.Equal(t, readArgs(t, argsFile), []string{"group list"})
	})

	t.Run("debug flag is appended while debug is enabled", func(t *testing.T) {
		ctx, _ := logContext(t)
		debug := true
		cli, argsFile := newFakeAzureCLI(t, func() bool { return debug })

		_, err := cli.Run(ctx, model.NewCLICommand("group", "list"))
		gt.NoError(t, err)

		debug = false
		_, err = cli.Run(ctx, model.NewCLICommand("group", "list"))
		gt.NoError(t, err)

		gt.Equal(t, readArgs(t, argsFile), []string{"group list --debug", "group list"})
	})

	t.Run("resource not found is an empty result", func(t *testing.T) {
		ctx, _ := logContext(t)
		cli, _ := newFakeAzureCLI(t, nil)

		raw, err := cli.Run(ctx, model.NewCLICommand("missing"))
		gt.NoError(t, err)
		gt.True(t, raw == nil)
	})

	t.Run("other failures return stderr", func(t *testing.T) {
		ctx, _ := logContext(t)
		cli, _ := newFakeAzureCLI(t, nil)

		_, err := cli.Run(ctx, model.NewCLICommand("broken"))
		gt.Error(t, err)
		gt.True(t, strings.Contains(err.Error(), "something went wrong"))
	})

	t.Run("output that is not json", func(t *testing.T) {
		ctx, _ := logContext(t)
		cli, _ := newFakeAzureCLI(t, nil)

		_, err := cli.Run(ctx, model.NewCLICommand("text"))
		gt.Error(t, err)
		gt.True(t, strings.Contains(err.Error(), "could not decode response json"))
	})

	t.Run("empty output", func(t *testing.T) {
		ctx, _ := logContext(t)
		cli, _ := newFakeAzureCLI(t, nil)

		raw, err := cli.Run(ctx, model.NewCLICommand("configure", "-l"))
		gt.NoError(t, err)
		gt.True(t, raw == nil)
	})

	t.Run("quiet command does not log output", func(t *testing.T) {
		ctx, logs := logContext(t)
		cli, _ := newFakeAzureCLI(t, nil)

		cmd := model.NewCLICommand("group", "show")
		cmd.Quiet = true
		_, err := cli.Run(ctx, cmd)
		gt.NoError(t, err)
		gt.False(t, strings.Contains(logs.String(), "eastus"))
	})

	t.Run("masked command hides arguments", func(t *testing.T) {
		ctx, logs := logContext(t)
		cli, argsFile := newFakeAzureCLI(t, nil)

		cmd := model.CLICommand{
			Args: []string{"login", "--service-principal", "-u", "app", "-p", "s3cr3t"},
			Mask: true,
		}
		_, err := cli.Run(ctx, cmd)
		gt.NoError(t, err)
		gt.False(t, strings.Contains(logs.String(), "s3cr3t"))
		gt.Equal(t, readArgs(t, argsFile), []string{"login --service-principal -u app -p s3cr3t"})
	})

	t.Run("missing executable", func(t *testing.T) {
		ctx, _ := logContext(t)
		cli := usecase.NewAzureCLI(usecase.NewMapEnvironment(nil), nil,
			usecase.WithAzPath(filepath.Join(tempDir(t), "az")))

		_, err := cli.Run(ctx, model.NewCLICommand("account", "show"))
		gt.Error(t, err)
	})
}

func TestAzureCLIShowAccount(t *testing.T) {
	ctx, _ := logContext(t)
	cli, argsFile := newFakeAzureCLI(t, nil)

	sub, err := cli.ShowAccount(ctx)
	gt.NoError(t, err)
	gt.Equal(t, sub.ID, "sub-1")
	gt.Equal(t, sub.Name, "Dev")
	gt.Equal(t, sub.TenantID, "tenant-1")
	gt.True(t, sub.IsDefault)
	gt.Equal(t, sub.User.Type, "servicePrincipal")
	gt.Equal(t, sub.String(), "Dev (sub-1)")
	gt.Equal(t, readArgs(t, argsFile), []string{"account show"})
}

func TestAzureCLISetDefaults(t *testing.T) {
	ctx, _ := logContext(t)
	cli, argsFile := newFakeAzureCLI(t, nil)

	gt.NoError(t, cli.SetDefaults(ctx, "eastus", "rg-env1"))
	gt.Equal(t, readArgs(t, argsFile), []string{
		"configure -d location=eastus",
		"configure -d group=rg-env1",
		"configure -l",
	})
}

func TestCommandLine(t *testing.T) {
	testCases := map[string]struct {
		args []string
		mask bool
		want string
	}{
		"plain": {
			args: []string{"account", "show"},
			want: "az account show",
		},
		"masked from first flag": {
			args: []string{"login", "--service-principal", "-u", "id", "-p", "secret"},
			mask: true,
			want: "az login ****",
		},
		"masked without flags": {
			args: []string{"account", "set", "secret-value"},
			mask: true,
			want: "az account ****",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			gt.Equal(t, usecase.CommandLine(tc.args, tc.mask), tc.want)
		})
	}
}

func TestIsResourceNotFound(t *testing.T) {
	testCases := map[string]struct {
		stderr string
		want   bool
	}{
		"resource not found": {
			stderr: "ERROR: (ResourceNotFound) missing\nCode: ResourceNotFound\nMessage: missing",
			want:   true,
		},
		"resource group not found": {
			stderr: "ERROR: (ResourceGroupNotFound) missing\nCode: ResourceGroupNotFound",
			want:   false,
		},
		"empty": {
			stderr: "",
			want:   false,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			gt.Equal(t, usecase.IsResourceNotFound(tc.stderr), tc.want)
		})
	}
}
