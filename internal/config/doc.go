// Package config holds the run configuration: where outputs go, which
// fields to skip, masking, auto-mapping, chunking and persistence settings.
// It is loaded from YAML and then overridden by command line flags.
package config
