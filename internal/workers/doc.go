// Package workers calculates worker pool sizes for the scan pipeline
// based on available CPUs, with an environment variable override.
package workers
