//go:generate gomarkdoc -e -f github -o README.md . --repository.url https://github.com/alulab/vartab --repository.default-branch master --repository.path /

// Package vartab builds consolidated genomic variant tables from
// heterogeneous sources with incremental merging, validation, and
// enrichment.
package vartab
