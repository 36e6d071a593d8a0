// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"
)

// SummaryFileName is the run report location under the data directory.
const SummaryFileName = "fetch_summary.yaml"

type summaryFile struct {
	Attempted   int      `yaml:"attempted"`
	Succeeded   int      `yaml:"succeeded"`
	Skipped     int      `yaml:"skipped"`
	Failed      int      `yaml:"failed"`
	FailedPMIDs []string `yaml:"failed_pmids,omitempty"`
}

// WriteSummary writes the run report as YAML. The report is
// informational; correctness state lives in the record store and the
// ledger.
func WriteSummary(path string, s Summary) error {
	failed := make([]string, 0, len(s.Failed))
	for id := range s.Failed {
		failed = append(failed, id)
	}
	sort.Strings(failed)

	data, err := yaml.Marshal(summaryFile{
		Attempted:   s.Attempted,
		Succeeded:   s.Succeeded,
		Skipped:     s.Skipped,
		Failed:      len(failed),
		FailedPMIDs: failed,
	})
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
