package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cdm-mapper/internal/rules"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.MaskPersonID)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output_folder: /tmp/cdm
skip_fields: [race_concept_id, observation.value_as_number]
mask_person_id: false
force_source_value_mapping: true
chunk_size: 1000
max_chunks: 3
parallelism: 4
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/cdm", cfg.OutputFolder)
	assert.Equal(t, "definitions", cfg.DefinitionsDir)
	assert.False(t, cfg.MaskPersonID)
	assert.True(t, cfg.AutoMap)

	copts := cfg.CompileOptions(rules.Catalog{"demo": {"id"}})
	assert.True(t, copts.OverrideTermMapping)
	assert.Equal(t, []string{"race_concept_id", "observation.value_as_number"}, copts.Skip)
	assert.Equal(t, 1.0, copts.AutoMapThreshold)

	eopts := cfg.EngineOptions(zap.NewNop())
	assert.False(t, eopts.MaskPersonID)
	assert.Equal(t, 4, eopts.Parallelism)
	assert.Equal(t, 1000, eopts.ChunkSize)
	assert.Equal(t, 3, eopts.MaxChunks)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("chunk_size: [1]"), 0o644))
	_, err := Load(bad)
	assert.Error(t, err)

	negative := filepath.Join(dir, "negative.yaml")
	require.NoError(t, os.WriteFile(negative, []byte("parallelism: 0"), 0o644))
	_, err = Load(negative)
	assert.ErrorContains(t, err, "parallelism")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.AutoMapThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.ChunkSize = -1
	assert.Error(t, cfg.Validate())
}
