// Package startup handles environment-based configuration loading and
// the startup log banner.
package startup
