package usecase

// Export for testing
var (
	CommandLine           = commandLine
	CanonicalPath         = canonicalPath
	NormalizeTemplatePath = normalizeTemplatePath
	IsExecutable          = isExecutable
)
