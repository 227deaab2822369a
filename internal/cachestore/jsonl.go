package cachestore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// appendJSONL serializes record to one line and appends it to path under the
// exclusive lock, matching the write discipline of every other cache mutator.
func (s *Store) appendJSONL(relPath string, record interface{}) error {
	lock, err := acquireLock(s.lockPath(), lockExclusive, s.lockTimeout)
	if err != nil {
		return err
	}
	defer lock.release()

	path := s.path(relPath)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("cachestore: open %s: %w", relPath, err)
	}
	defer f.Close()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("cachestore: marshal record: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("cachestore: append to %s: %w", relPath, err)
	}
	return nil
}

// tailJSONL returns at most limit of the most-recent records from relPath,
// oldest-first. Malformed lines are skipped rather than aborting the read.
// A missing file or lock timeout returns (nil, nil): absent is not an error.
func tailJSONL[T any](s *Store, relPath string, limit int) ([]T, error) {
	lock, err := acquireLock(s.lockPath(), lockShared, s.lockTimeout)
	if err != nil {
		return nil, nil
	}
	defer lock.release()

	path := s.path(relPath)
	f, err := os.Open(path)
	if err != nil {
		return nil, nil
	}
	defer f.Close()

	var all []T
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		all = append(all, rec)
	}

	if limit <= 0 || len(all) <= limit {
		return all, nil
	}
	return all[len(all)-limit:], nil
}

// AppendSuggestionQuality appends one quality record.
func (s *Store) AppendSuggestionQuality(r SuggestionQualityRecord) error {
	return s.appendJSONL(fileSuggestionQuality, r)
}

// AppendSuggestionRunAudit appends one run-audit record.
func (s *Store) AppendSuggestionRunAudit(r SuggestionRunAuditRecord) error {
	return s.appendJSONL(fileSuggestionRuns, r)
}

// AppendApplyPlanAudit appends one apply-plan lifecycle event.
func (s *Store) AppendApplyPlanAudit(r ApplyPlanAuditRecord) error {
	return s.appendJSONL(fileApplyPlanAudit, r)
}

// AppendImplementationHarness appends one harness execution summary.
func (s *Store) AppendImplementationHarness(r ImplementationHarnessRecord) error {
	return s.appendJSONL(fileImplementationHarness, r)
}

// AppendPipelineMetric appends one pipeline latency/cost record.
func (s *Store) AppendPipelineMetric(r PipelineMetricRecord) error {
	return s.appendJSONL(filePipelineMetrics, r)
}

// TailSuggestionQuality returns the n most-recent quality records.
func (s *Store) TailSuggestionQuality(n int) []SuggestionQualityRecord {
	recs, _ := tailJSONL[SuggestionQualityRecord](s, fileSuggestionQuality, n)
	return recs
}

// TailSuggestionRunAudit returns the n most-recent run-audit records.
func (s *Store) TailSuggestionRunAudit(n int) []SuggestionRunAuditRecord {
	recs, _ := tailJSONL[SuggestionRunAuditRecord](s, fileSuggestionRuns, n)
	return recs
}

// TailApplyPlanAudit returns the n most-recent apply-plan audit records.
func (s *Store) TailApplyPlanAudit(n int) []ApplyPlanAuditRecord {
	recs, _ := tailJSONL[ApplyPlanAuditRecord](s, fileApplyPlanAudit, n)
	return recs
}

// TailPipelineMetrics returns the n most-recent pipeline metric records.
func (s *Store) TailPipelineMetrics(n int) []PipelineMetricRecord {
	recs, _ := tailJSONL[PipelineMetricRecord](s, filePipelineMetrics, n)
	return recs
}
