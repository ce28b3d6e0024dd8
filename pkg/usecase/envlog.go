package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/m-mizutani/aderunner/pkg/domain/interfaces"
	"github.com/m-mizutani/ctxlog"
)

var (
	// reportedPrefixes selects the variables written to the log.
	reportedPrefixes = []string{"ADE_", "RUNNER_", "AZURE_", "ARM_", "MSI_"}

	// sensitiveWords mark variables whose value is masked.
	sensitiveWords = []string{"SECRET", "PASSWORD", "TOKEN", "PRIVATE", "_KEY", "USER"}
)

const maskedValue = "****"

// LogEnvironment writes runner related environment variables to the log,
// masking values that may hold credentials.
func LogEnvironment(ctx context.Context, env interfaces.Environment) {
	logger := ctxlog.From(ctx)

	for _, entry := range ReportEnvironment(env) {
		logger.Info(entry)
	}
}

// ReportEnvironment returns the "KEY: value" lines LogEnvironment writes,
// sorted by key.
func ReportEnvironment(env interfaces.Environment) []string {
	var lines []string
	for _, kv := range env.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		upper := strings.ToUpper(key)
		if !hasAnyPrefix(upper, reportedPrefixes) {
			continue
		}
		if containsAny(upper, sensitiveWords) {
			value = maskedValue
		}
		lines = append(lines, key+": "+value)
	}
	sort.Strings(lines)
	return lines
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
