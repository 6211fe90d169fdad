// Package constants provides shared constants used throughout the vartab codebase.
// This includes timeouts, limits, file permissions, and other configuration values
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// AnnotationTimeout is the default timeout for a single external
	// annotation run (VEP over a full batch can be slow)
	AnnotationTimeout = 30 * time.Minute

	// LiftoverTimeout is the default timeout for a coordinate conversion run
	LiftoverTimeout = 10 * time.Minute

	// QueryTimeout is the default timeout for a source database query
	QueryTimeout = 2 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// ExecutablePermissions is for executable files (rwxr-xr-x)
	ExecutablePermissions = 0755
)

// Limit constants define various limits and capacities
const (
	// DefaultLookupWorkers is the default number of parallel reference
	// genome lookup workers
	DefaultLookupWorkers = 4

	// MaxLookupWorkers caps the reference lookup pool regardless of
	// configuration
	MaxLookupWorkers = 32

	// DefaultLookupChunkSize is the number of rows handed to the lookup
	// pool per chunk
	DefaultLookupChunkSize = 10000

	// WriteBufferSize is the default buffer size for write operations
	WriteBufferSize = 4096

	// DefaultPreviewRows is the default number of rows shown by inspect
	DefaultPreviewRows = 20

	// MaxPreviewRows is the maximum number of rows shown by inspect
	MaxPreviewRows = 1000
)

// Assembly constants name the supported reference genome builds
const (
	// AssemblyHG19 is the GRCh37 reference build
	AssemblyHG19 = "hg19"

	// AssemblyHG38 is the GRCh38 reference build
	AssemblyHG38 = "hg38"
)

// Column constants name well-known consolidated table columns
const (
	// ColumnChrom is the chromosome key column
	ColumnChrom = "chr"

	// ColumnPos is the 1-based position key column
	ColumnPos = "pos"

	// ColumnRef is the reference allele key column
	ColumnRef = "ref"

	// ColumnAlt is the alternate allele key column
	ColumnAlt = "alt"

	// ColumnStrand is the annotated transcript strand, "1" or "-1"
	ColumnStrand = "STRAND"

	// ColumnSourceCount is the per-row count of sources carrying the variant
	ColumnSourceCount = "dbs_count"

	// ColumnADAR flags variants correctable by ADAR-mediated editing
	ColumnADAR = "is_ADAR_fixable"

	// ColumnAPOBEC flags variants correctable by APOBEC-mediated editing
	ColumnAPOBEC = "is_APOBEC_fixable"
)

// Path constants
const (
	// DefaultConfigPath is the default path for configuration files
	DefaultConfigPath = "~/.vartab/config.yaml"

	// DefaultWorkDir is the default scratch directory for annotation runs
	DefaultWorkDir = "~/.vartab/tmp"
)

// Format constants
const (
	// TimeFormatISO8601 is the ISO 8601 time format
	TimeFormatISO8601 = time.RFC3339

	// TimeFormatFilename is the format used in generated filenames
	TimeFormatFilename = "20060102-150405"
)
