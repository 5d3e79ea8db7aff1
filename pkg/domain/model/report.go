package model

import "time"

// StageResult is the outcome of one toolchain passing through the pipeline
type StageResult struct {
	Toolchain       Toolchain
	FetchSkipped    bool
	ExtractSkipped  bool
	Removed         []string
	ArchivePath     string
	PublishedObject string
	Err             error
	Elapsed         time.Duration
}

// Failed reports whether the toolchain did not make it to a packaged archive
func (r *StageResult) Failed() bool {
	return r.Err != nil
}

// RunReport aggregates the stage results of a run
type RunReport struct {
	RunID   string
	Results []*StageResult
}

// Failures returns the results that carry an error
func (r *RunReport) Failures() []*StageResult {
	var failed []*StageResult
	for _, res := range r.Results {
		if res.Failed() {
			failed = append(failed, res)
		}
	}
	return failed
}
