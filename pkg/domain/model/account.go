package model

// Subscription is the subset of `az account show` output the runner uses.
type Subscription struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	TenantID  string      `json:"tenantId"`
	State     string      `json:"state"`
	IsDefault bool        `json:"isDefault"`
	User      AccountUser `json:"user"`
}

type AccountUser struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (s Subscription) String() string {
	return s.Name + " (" + s.ID + ")"
}

// CLICommand is a single Azure CLI invocation.
type CLICommand struct {
	Args []string
	// Mask hides every argument from the first flag onwards when the
	// command is logged.
	Mask bool
	// Quiet disables logging of the command output.
	Quiet bool
}

func NewCLICommand(args ...string) CLICommand {
	return CLICommand{Args: args}
}
