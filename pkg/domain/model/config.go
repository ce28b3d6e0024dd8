package model

// Environment variable names read or published by the runner.
const (
	EnvProjectName         = "ADE_PROJECT_NAME"
	EnvDevCenterName       = "ADE_DEVCENTER_NAME"
	EnvActionName          = "ADE_ACTION_NAME"
	EnvActionOutput        = "ADE_ACTION_OUTPUT"
	EnvActionStorage       = "ADE_ACTION_STORAGE"
	EnvActionTemp          = "ADE_ACTION_TEMP"
	EnvActionParameters    = "ADE_ACTION_PARAMETERS"
	EnvCatalog             = "ADE_CATALOG"
	EnvCatalogItem         = "ADE_CATALOG_ITEM"
	EnvCatalogItemName     = "ADE_CATALOG_ITEM_NAME"
	EnvCatalogItemTemplate = "ADE_CATALOG_ITEM_TEMPLATE"
	EnvTemplatePath        = "ADE_TEMPLATE_PATH"
	EnvEnvironmentType     = "ADE_ENVIRONMENT_TYPE"
	EnvEnvironmentName     = "ADE_ENVIRONMENT_NAME"
	EnvEnvironmentLocation = "ADE_ENVIRONMENT_LOCATION"
	EnvSubscriptionID      = "ADE_ENVIRONMENT_SUBSCRIPTION_ID"
	EnvResourceGroupName   = "ADE_ENVIRONMENT_RESOURCE_GROUP_NAME"
	EnvSubscription        = "ADE_ENVIRONMENT_SUBSCRIPTION"
	EnvResourceGroupID     = "ADE_ENVIRONMENT_RESOURCE_GROUP_ID"
	EnvTimestamp           = "ADE_TIMESTAMP"
	EnvDebug               = "ADE_DEBUG"
	EnvRunner              = "ADE_RUNNER"
	EnvLocalBuild          = "RUNNER_LOCAL_BUILD"
	EnvActionsDirectory    = "RUNNER_ACTIONS_DIRECTORY"
	EnvEntrypointDirectory = "RUNNER_ENTRYPOINT_DIRECTORY"
	EnvUseMSI              = "ARM_USE_MSI"
	EnvARMTenantID         = "ARM_TENANT_ID"
	EnvARMSubscriptionID   = "ARM_SUBSCRIPTION_ID"
	EnvAzureClientID       = "AZURE_CLIENT_ID"
	EnvAzureClientSecret   = "AZURE_CLIENT_SECRET" // #nosec G101 - variable name, not a credential
	EnvAzureTenantID       = "AZURE_TENANT_ID"
)

// Fixed locations inside the runner image.
const (
	RunnerActionsDirectory    = "/actions.d"
	RunnerEntrypointDirectory = "/entrypoint.d"
	ActionRepository          = "/mnt/repository"
)

// Variable describes a recognized configuration variable.
type Variable struct {
	Name string
	// Legacy holds previous names of the variable, ordered newest to oldest.
	Legacy   []string
	Required bool
}

// Variables is the table of configuration variables resolved at startup.
var Variables = []Variable{
	{Name: EnvProjectName, Legacy: []string{"ADE_PROJECT"}, Required: true},
	{Name: EnvDevCenterName, Legacy: []string{"ADE_DEVCENTER"}, Required: true},
	{Name: EnvActionName, Legacy: []string{"ACTION_NAME"}, Required: true},
	{Name: EnvActionOutput, Legacy: []string{"ACTION_OUTPUT"}, Required: true},
	{Name: EnvActionStorage, Legacy: []string{"ACTION_STORAGE"}, Required: true},
	{Name: EnvActionTemp, Legacy: []string{"ACTION_TEMP"}, Required: true},
	{Name: EnvActionParameters, Legacy: []string{"ACTION_PARAMETERS"}},
	{Name: EnvCatalog, Legacy: []string{"CATALOG"}, Required: true},
	{Name: EnvCatalogItem, Legacy: []string{"CATALOG_ITEM"}, Required: true},
	{Name: EnvTemplatePath, Required: true},
	{Name: EnvEnvironmentType, Required: true},
	{Name: EnvEnvironmentName, Required: true},
	{Name: EnvEnvironmentLocation, Required: true},
	{Name: EnvSubscriptionID, Legacy: []string{"ENVIRONMENT_SUBSCRIPTION_ID"}, Required: true},
	{Name: EnvResourceGroupName, Legacy: []string{"ENVIRONMENT_RESOURCE_GROUP_NAME"}, Required: true},
	{Name: EnvARMTenantID, Required: true},
	{Name: EnvARMSubscriptionID, Required: true},
}

// LookupVariable returns the table entry for name, or a bare optional
// variable when name is not in the table.
func LookupVariable(name string) Variable {
	for _, v := range Variables {
		if v.Name == name {
			return v
		}
	}
	return Variable{Name: name}
}

// DebugFlag reports the current value of ADE_DEBUG. Scripts run by the
// runner may change it, so it is evaluated on every call.
type DebugFlag func() bool

func (f DebugFlag) Enabled() bool {
	if f == nil {
		return false
	}
	return f()
}

// Config is the resolved runner configuration. It is built once at startup
// and is not modified afterwards.
type Config struct {
	ProjectName      string
	DevCenterName    string
	ActionName       string
	ActionOutput     string
	ActionStorage    string
	ActionTemp       string
	ActionParameters string

	Catalog             string
	CatalogItem         string
	CatalogItemName     string
	TemplatePath        string
	CatalogItemTemplate string

	EnvironmentType     string
	EnvironmentName     string
	EnvironmentLocation string
	SubscriptionID      string
	ResourceGroupName   string
	Subscription        string
	ResourceGroupID     string

	TenantID          string
	ARMSubscriptionID string
	UseMSI            bool

	Timestamp  string
	InRunner   bool
	LocalBuild bool

	ActionsDirectory    string
	EntrypointDirectory string
	ActionRepository    string

	Debug DebugFlag
}
