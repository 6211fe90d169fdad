// Package manifest loads build manifests: YAML documents that describe a
// variant table build end to end, from the key schema through the sources
// to merge, their lift-over and annotation wiring, and the enrichment and
// export settings.
//
// Example manifest:
//
//	sources:
//	  - name: clinvar
//	    type: tabular
//	    path: clinvar_result.txt
//	    trim: true
//	    strip_chr: true
//	    rename:
//	      Chromosome: chr
//	      Position: pos
//	    carry: [significance]
//	    annotate: [vep]
//	  - name: cohort
//	    type: vcf
//	    path: cohort.vcf.gz
//	vep:
//	  script: scripts/vep_ann.sh
//	enrich:
//	  refseq:
//	    genome: hg38
//	    fasta: refs/hg38.fa
//	  adar: true
//	  source_count: true
//	export:
//	  path: out/variants.csv
//
// Relative paths inside a manifest resolve against the manifest's own
// directory, so a manifest travels with its inputs.
package manifest

import (
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/goccy/go-yaml"

	"github.com/alulab/vartab/internal/annot/liftover"
	"github.com/alulab/vartab/internal/annot/vep"
	"github.com/alulab/vartab/internal/deps"
	"github.com/alulab/vartab/internal/sources/sqlite"
	"github.com/alulab/vartab/internal/sources/tabular"
	"github.com/alulab/vartab/internal/sources/vcf"
	"github.com/alulab/vartab/pkg/enrich"
	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/source"
	"github.com/alulab/vartab/pkg/tab"
	"github.com/alulab/vartab/pkg/tabio"
)

// Source types accepted in a manifest.
const (
	// TypeTabular loads delimited text, optionally gzipped.
	TypeTabular = "tabular"
	// TypeVCF loads variant calls that validate the table.
	TypeVCF = "vcf"
	// TypeSQLite queries a SQLite database.
	TypeSQLite = "sqlite"
)

// AnnotateVEP names the VEP step in a source's annotate list.
const AnnotateVEP = "vep"

// Manifest describes one variant table build.
type Manifest struct {
	// Keys overrides the canonical variant key columns.
	Keys []string `json:"keys,omitempty" yaml:"keys,omitempty"`
	// Table seeds the build from a previously exported table.
	Table string `json:"table,omitempty" yaml:"table,omitempty"`
	// Sources lists contributors and validators in merge order.
	Sources []SourceConfig `json:"sources" yaml:"sources"`
	// VEP configures the wrapper shared by sources that annotate.
	VEP *VEPConfig `json:"vep,omitempty" yaml:"vep,omitempty"`
	// Enrich selects the enrichment steps run after merging.
	Enrich *EnrichConfig `json:"enrich,omitempty" yaml:"enrich,omitempty"`
	// Export controls where and how the finished table is written.
	Export *ExportConfig `json:"export,omitempty" yaml:"export,omitempty"`

	// dir anchors relative manifest paths; set by Load.
	dir string
}

// SourceConfig describes a single source of a build.
type SourceConfig struct {
	// Name labels the source and names its indicator column.
	Name string `json:"name" yaml:"name"`
	// Type selects the loader: tabular, vcf, or sqlite.
	Type string `json:"type" yaml:"type"`
	// Kind sets how the source participates. Tabular and sqlite
	// sources contribute variants by default; vcf sources always
	// validate.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
	// Path locates the source file.
	Path string `json:"path" yaml:"path"`
	// Query is the SQL statement run against a sqlite source.
	Query string `json:"query,omitempty" yaml:"query,omitempty"`
	// Delimiter overrides the field separator inferred from the path.
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	// Trim strips surrounding whitespace from every loaded cell.
	Trim bool `json:"trim,omitempty" yaml:"trim,omitempty"`
	// StripChr removes a leading chr prefix from chromosome names.
	StripChr bool `json:"strip_chr,omitempty" yaml:"strip_chr,omitempty"`
	// Rename maps file column names onto table column names.
	Rename map[string]string `json:"rename,omitempty" yaml:"rename,omitempty"`
	// Carry keeps only the key columns plus the named ones.
	Carry []string `json:"carry,omitempty" yaml:"carry,omitempty"`
	// Keys overrides the key columns for this source alone.
	Keys []string `json:"keys,omitempty" yaml:"keys,omitempty"`
	// Liftover converts the source's coordinates before merging.
	Liftover *LiftoverConfig `json:"liftover,omitempty" yaml:"liftover,omitempty"`
	// Annotate names annotation steps run on new rows, in order.
	Annotate []string `json:"annotate,omitempty" yaml:"annotate,omitempty"`
}

// VEPConfig locates the VEP wrapper script.
type VEPConfig struct {
	// Script is the wrapper invoked for each annotating source.
	Script string `json:"script" yaml:"script"`
	// WorkDir holds the wrapper's temp files. Defaults to the system
	// temp directory.
	WorkDir string `json:"work_dir,omitempty" yaml:"work_dir,omitempty"`
}

// LiftoverConfig converts a source between genome builds.
type LiftoverConfig struct {
	// Script is the liftOver wrapper.
	Script string `json:"script" yaml:"script"`
	// Chain is the UCSC chain file for the conversion.
	Chain string `json:"chain" yaml:"chain"`
}

// EnrichConfig selects enrichment steps. Steps run in the field order
// below regardless of their order in the manifest.
type EnrichConfig struct {
	// RefSeq fills the reference sequence column from a FASTA file.
	RefSeq *RefSeqConfig `json:"refseq,omitempty" yaml:"refseq,omitempty"`
	// ADAR flags variants ADAR editing could repair. Needs the strand
	// annotation, so the build must include a VEP step.
	ADAR bool `json:"adar,omitempty" yaml:"adar,omitempty"`
	// APOBEC flags variants APOBEC editing could repair. Needs the
	// strand annotation like ADAR.
	APOBEC bool `json:"apobec,omitempty" yaml:"apobec,omitempty"`
	// SourceCount counts per row how many sources carry the variant.
	SourceCount bool `json:"source_count,omitempty" yaml:"source_count,omitempty"`
}

// RefSeqConfig configures reference sequence lookup.
type RefSeqConfig struct {
	// Genome names the assembly, for example hg38.
	Genome string `json:"genome" yaml:"genome"`
	// FASTA is the faidx-indexed genome FASTA file.
	FASTA string `json:"fasta" yaml:"fasta"`
	// Workers bounds the concurrent FASTA readers.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`
	// ChunkSize is the number of rows handed to each worker.
	ChunkSize int `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty"`
}

// ExportConfig controls the final table write.
type ExportConfig struct {
	// Path is the output file; its extension implies the format.
	Path string `json:"path" yaml:"path"`
	// Format overrides the format implied by the path.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
	// Report writes a markdown build report next to the table.
	Report bool `json:"report,omitempty" yaml:"report,omitempty"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes and validates a manifest document. Relative paths stay
// relative; use Load to anchor them at the manifest's directory.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapParse("yaml", "manifest", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Schema returns the key schema for the build.
func (m *Manifest) Schema() (tab.Schema, error) {
	if len(m.Keys) == 0 {
		return tab.Default(), nil
	}
	return tab.NewSchema(m.Keys...)
}

// Registry builds every configured source, wired with its lift-over and
// annotation steps, registered in manifest order.
func (m *Manifest) Registry() (*source.Registry, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	reg := source.NewRegistry()
	for _, cfg := range m.Sources {
		var src source.Source
		switch cfg.Type {
		case TypeTabular:
			src = m.buildTabular(cfg)
		case TypeVCF:
			src = m.buildVCF(cfg)
		case TypeSQLite:
			src = m.buildSQLite(cfg)
		}
		if err := reg.Add(src); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Enrichers builds the configured enrichment steps in their fixed run
// order: refseq, adar, apobec, source count.
func (m *Manifest) Enrichers() ([]enrich.Enricher, error) {
	if m.Enrich == nil {
		return nil, nil
	}
	var steps []enrich.Enricher
	if rc := m.Enrich.RefSeq; rc != nil {
		var opts []enrich.RefSeqOption
		if rc.Workers > 0 {
			opts = append(opts, enrich.RefSeqWithWorkers(rc.Workers))
		}
		if rc.ChunkSize > 0 {
			opts = append(opts, enrich.RefSeqWithChunkSize(rc.ChunkSize))
		}
		r, err := enrich.NewRefSeq(rc.Genome, m.resolve(rc.FASTA), opts...)
		if err != nil {
			return nil, err
		}
		steps = append(steps, r)
	}
	if m.Enrich.ADAR {
		steps = append(steps, enrich.ADARFlag{})
	}
	if m.Enrich.APOBEC {
		steps = append(steps, enrich.APOBECFlag{})
	}
	if m.Enrich.SourceCount {
		steps = append(steps, enrich.NewSourceCount(m.SourceNames()...))
	}
	return steps, nil
}

// Dependencies lists the external tools and files the configured build
// needs, for preflight checking before any merge work starts.
func (m *Manifest) Dependencies() []deps.Dependency {
	var out []deps.Dependency
	annotates := false
	for _, cfg := range m.Sources {
		if len(cfg.Annotate) > 0 {
			annotates = true
		}
		if cfg.Liftover != nil {
			out = append(out, deps.Dependency{
				Name:        "liftover:" + cfg.Name,
				DisplayName: "liftOver wrapper",
				Commands:    []string{"bash"},
				Files: []string{
					m.resolve(cfg.Liftover.Script),
					m.resolve(cfg.Liftover.Chain),
				},
			})
		}
	}
	if annotates && m.VEP != nil {
		out = append(out, deps.Dependency{
			Name:        "vep",
			DisplayName: "VEP wrapper",
			Commands:    []string{"bash"},
			Files:       []string{m.resolve(m.VEP.Script)},
		})
	}
	if m.Enrich != nil && m.Enrich.RefSeq != nil {
		fasta := m.resolve(m.Enrich.RefSeq.FASTA)
		out = append(out, deps.Dependency{
			Name:        "refseq",
			DisplayName: "reference FASTA",
			Files:       []string{fasta, fasta + ".fai"},
		})
	}
	return out
}

// SourceNames returns the configured source names in manifest order.
func (m *Manifest) SourceNames() []string {
	names := make([]string, len(m.Sources))
	for i, cfg := range m.Sources {
		names[i] = cfg.Name
	}
	return names
}

// TablePath returns the resolved seed table path, or "" when the build
// starts from an empty table.
func (m *Manifest) TablePath() string {
	if m.Table == "" {
		return ""
	}
	return m.resolve(m.Table)
}

// ExportPath returns the resolved output path, or "" when the manifest
// has no export block.
func (m *Manifest) ExportPath() string {
	if m.Export == nil {
		return ""
	}
	return m.resolve(m.Export.Path)
}

// ExportFormat returns the output format, derived from the export path
// unless the manifest names one explicitly.
func (m *Manifest) ExportFormat() (tabio.Format, error) {
	if m.Export == nil {
		return "", errors.NewConfigError("export", nil, "manifest has no export block")
	}
	if m.Export.Format != "" {
		return tabio.ParseFormat(m.Export.Format)
	}
	return tabio.FormatForPath(m.Export.Path)
}

func (m *Manifest) validate() error {
	if len(m.Sources) == 0 {
		return errors.NewConfigError("sources", nil, "a manifest needs at least one source")
	}
	seen := make(map[string]bool, len(m.Sources))
	for i, cfg := range m.Sources {
		if cfg.Name == "" {
			return errors.NewConfigError("sources", i, "source has no name")
		}
		if seen[cfg.Name] {
			return errors.NewDuplicateError(cfg.Name)
		}
		seen[cfg.Name] = true
		if err := m.validateSource(cfg); err != nil {
			return err
		}
	}
	if m.VEP != nil && m.VEP.Script == "" {
		return errors.NewConfigError("vep.script", nil, "vep block needs a wrapper script")
	}
	if ec := m.Enrich; ec != nil && ec.RefSeq != nil {
		if ec.RefSeq.Genome == "" || ec.RefSeq.FASTA == "" {
			return errors.NewConfigError("enrich.refseq", nil, "refseq needs a genome name and a fasta path")
		}
	}
	if m.Export != nil {
		if m.Export.Path == "" {
			return errors.NewConfigError("export.path", nil, "export block needs an output path")
		}
		if _, err := m.ExportFormat(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manifest) validateSource(cfg SourceConfig) error {
	field := "sources." + cfg.Name
	switch cfg.Type {
	case TypeTabular, TypeVCF, TypeSQLite:
	default:
		return errors.NewConfigError(field+".type", cfg.Type, "supported types are tabular, vcf, sqlite")
	}
	if cfg.Path == "" {
		return errors.NewConfigError(field+".path", nil, "source has no path")
	}
	if cfg.Kind != "" && !source.Kind(cfg.Kind).IsValid() {
		return errors.NewConfigError(field+".kind", cfg.Kind, "supported kinds are variants, validation")
	}
	if utf8.RuneCountInString(cfg.Delimiter) > 1 {
		return errors.NewConfigError(field+".delimiter", cfg.Delimiter, "delimiter must be a single character")
	}
	switch cfg.Type {
	case TypeTabular:
		if source.Kind(cfg.Kind) == source.KindValidation {
			return errors.NewConfigError(field+".kind", cfg.Kind, "tabular sources always contribute variants")
		}
	case TypeVCF:
		if source.Kind(cfg.Kind) == source.KindVariants {
			return errors.NewConfigError(field+".kind", cfg.Kind, "vcf sources always validate")
		}
		if cfg.Liftover != nil {
			return errors.NewConfigError(field+".liftover", nil, "vcf sources merge on their own coordinates")
		}
		if len(cfg.Annotate) > 0 {
			return errors.NewConfigError(field+".annotate", cfg.Annotate, "vcf sources are not annotated")
		}
	case TypeSQLite:
		if cfg.Query == "" {
			return errors.NewConfigError(field+".query", nil, "sqlite source has no query")
		}
	}
	if cfg.Liftover != nil && (cfg.Liftover.Script == "" || cfg.Liftover.Chain == "") {
		return errors.NewConfigError(field+".liftover", nil, "liftover needs a script and a chain file")
	}
	for _, step := range cfg.Annotate {
		if step != AnnotateVEP {
			return errors.NewConfigError(field+".annotate", step, "the only known annotation step is vep")
		}
		if m.VEP == nil {
			return errors.NewConfigError(field+".annotate", step, "vep annotation needs a top level vep block")
		}
		if source.Kind(cfg.Kind) == source.KindValidation {
			return errors.NewConfigError(field+".annotate", step, "validation sources are not annotated")
		}
	}
	return nil
}

func (m *Manifest) buildTabular(cfg SourceConfig) *tabular.Source {
	var opts []tabular.Option
	if len(cfg.Keys) > 0 {
		opts = append(opts, tabular.WithKeys(cfg.Keys...))
	}
	if len(cfg.Rename) > 0 {
		opts = append(opts, tabular.WithRename(cfg.Rename))
	}
	if cfg.Delimiter != "" {
		d, _ := utf8.DecodeRuneInString(cfg.Delimiter)
		opts = append(opts, tabular.WithDelimiter(d))
	}
	if cfg.Trim {
		opts = append(opts, tabular.WithTrim())
	}
	if cfg.StripChr {
		opts = append(opts, tabular.WithChrStrip())
	}
	if cfg.Liftover != nil {
		opts = append(opts, tabular.WithPreProcess(m.lifter(cfg.Liftover).PreProcess()))
	}
	if len(cfg.Carry) > 0 {
		opts = append(opts, tabular.WithCarry(cfg.Carry...))
	}
	if steps := m.annotations(cfg); len(steps) > 0 {
		opts = append(opts, tabular.WithAnnotations(steps...))
	}
	return tabular.New(cfg.Name, m.resolve(cfg.Path), opts...)
}

func (m *Manifest) buildVCF(cfg SourceConfig) *vcf.Source {
	var opts []vcf.Option
	if len(cfg.Keys) > 0 {
		opts = append(opts, vcf.WithKeys(cfg.Keys...))
	}
	return vcf.New(cfg.Name, m.resolve(cfg.Path), opts...)
}

func (m *Manifest) buildSQLite(cfg SourceConfig) *sqlite.Source {
	var opts []sqlite.Option
	if cfg.Kind != "" {
		opts = append(opts, sqlite.WithKind(source.Kind(cfg.Kind)))
	}
	if len(cfg.Keys) > 0 {
		opts = append(opts, sqlite.WithKeys(cfg.Keys...))
	}
	if cfg.Liftover != nil {
		opts = append(opts, sqlite.WithPreProcess(m.lifter(cfg.Liftover).PreProcess()))
	}
	if steps := m.annotations(cfg); len(steps) > 0 {
		opts = append(opts, sqlite.WithAnnotations(steps...))
	}
	return sqlite.New(cfg.Name, m.resolve(cfg.Path), cfg.Query, opts...)
}

// annotations assumes the config already validated.
func (m *Manifest) annotations(cfg SourceConfig) []source.Annotation {
	steps := make([]source.Annotation, 0, len(cfg.Annotate))
	for range cfg.Annotate {
		var opts []vep.RunnerOption
		if m.VEP.WorkDir != "" {
			opts = append(opts, vep.RunnerWithWorkDir(m.resolve(m.VEP.WorkDir)))
		}
		steps = append(steps, vep.NewRunner(m.resolve(m.VEP.Script), opts...).Annotation())
	}
	return steps
}

func (m *Manifest) lifter(cfg *LiftoverConfig) *liftover.Lifter {
	return liftover.NewLifter(m.resolve(cfg.Script), m.resolve(cfg.Chain))
}

// resolve anchors a relative path at the manifest directory.
func (m *Manifest) resolve(path string) string {
	if path == "" || m.dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.dir, path)
}
