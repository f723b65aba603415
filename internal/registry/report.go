package registry

import (
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// reportFile mirrors the report-data.json a TDD server writes into its
// project's .vizzly directory. Only the summary block and the top-level
// timestamp matter here; the per-test detail is the dashboard's business.
type reportFile struct {
	Timestamp int64          `json:"timestamp"`
	Summary   *reportSummary `json:"summary"`
}

type reportSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Errors int `json:"errors"`
}

// ReadReportStats reads a server's report-data file and returns its test
// summary. Any problem, a missing file, bad JSON, or a report without a
// summary block yet, yields all-zero stats: a server that has produced no
// results is indistinguishable from one that has run zero tests.
func ReadReportStats(path string) ServerStats {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug("report data unreadable", "path", path, "error", err)
		}
		return ServerStats{}
	}

	var file reportFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Debug("report data is not valid JSON", "path", path, "error", err)
		return ServerStats{}
	}
	if file.Summary == nil {
		return ServerStats{}
	}

	stats := ServerStats{
		Total:  file.Summary.Total,
		Passed: file.Summary.Passed,
		Failed: file.Summary.Failed,
		Errors: file.Summary.Errors,
	}
	if file.Timestamp > 0 {
		t := time.UnixMilli(file.Timestamp)
		stats.UpdatedAt = &t
	}
	return stats
}
