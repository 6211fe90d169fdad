package merge

import (
	"time"

	"github.com/agentstation/utc"
)

// Stats describes the outcome of merging or validating one source.
type Stats struct {
	// Source is the source name, which is also its indicator column.
	Source string `json:"source"`

	// Loaded counts the rows the source produced after preprocessing.
	Loaded int `json:"loaded"`

	// Existing counts rows already in the table that were flagged.
	Existing int `json:"existing"`

	// New counts rows appended to the table.
	New int `json:"new"`

	// Dropped counts new rows lost to annotation steps or key collisions.
	Dropped int `json:"dropped"`

	// Duplicates counts in-batch repeats of a key; first occurrence wins.
	Duplicates int `json:"duplicates"`

	// Rows and Columns are the table dimensions after this source.
	Rows    int `json:"rows"`
	Columns int `json:"columns"`

	// Duration is the wall time the operation took.
	Duration time.Duration `json:"duration"`

	// MergedAt is when the operation completed.
	MergedAt utc.Time `json:"merged_at"`
}
