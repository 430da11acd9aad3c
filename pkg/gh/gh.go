package gh

import (
	"fmt"
	"os"
)

// runnerLabels maps snap architectures to GitHub Actions runner labels
var runnerLabels = map[string]string{
	"amd64": "X64",
	"arm64": "ARM64",
}

// ArchToRunnerLabels returns the runner labels for an architecture,
// optionally adding the self-hosted label.
func ArchToRunnerLabels(arch string, selfHosted bool) []string {
	var labels []string
	if label, ok := runnerLabels[arch]; ok {
		labels = append(labels, label)
	}
	if selfHosted {
		labels = append(labels, "self-hosted")
	}
	return labels
}

// SetOutput appends a workflow output variable to the file named by
// GITHUB_OUTPUT. Returns an error outside of a GitHub Actions environment.
func SetOutput(name, value string) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		return fmt.Errorf("GITHUB_OUTPUT is not set")
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s=%s\n", name, value); err != nil {
		return fmt.Errorf("write output %s: %w", name, err)
	}
	return nil
}
