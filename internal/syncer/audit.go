package syncer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"tagsync/internal/logging"
)

// destColumn is the audit trail column holding local destination paths.
const destColumn = "dest_path"

// Reconcile parses one audit trail and returns the destination paths in
// the order the tool recorded them, one per synced file.
func Reconcile(auditPath string) ([]string, error) {
	f, err := os.Open(auditPath)
	if err != nil {
		return nil, &AuditTrailError{Path: auditPath, Reason: "missing", Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return nil, &AuditTrailError{Path: auditPath, Reason: "empty"}
	}
	if err != nil {
		return nil, &AuditTrailError{Path: auditPath, Reason: "malformed header", Err: err}
	}

	destIdx := -1
	for i, col := range header {
		if col == destColumn {
			destIdx = i
			break
		}
	}
	if destIdx < 0 {
		return nil, &AuditTrailError{
			Path:   auditPath,
			Reason: fmt.Sprintf("missing %q column in header %v", destColumn, header),
		}
	}

	var paths []string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &AuditTrailError{Path: auditPath, Reason: "malformed row", Err: err}
		}
		paths = append(paths, record[destIdx])
	}
	logging.Audit("reconciled %d synced paths from %s", len(paths), auditPath)
	return paths, nil
}
