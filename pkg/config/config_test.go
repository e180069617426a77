package config

import (
	"errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"jobfuzz/pkg/constants"
	"jobfuzz/pkg/utils"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	config, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, defaultConfigurations(), config)
	assert.Equal(t, int32(10000), config.CheckpointInterval)
	assert.True(t, config.DeleteOnCompletion)
}

func TestLoad_File(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, constants.ConfigFileName, []byte(`
LogLevel: DEBUG
CheckpointInterval: 250
ProgressFile: run/progress.save
JobInfo: custom
DeleteOnCompletion: false
`), 0o644))

	config, err := Load(fs, "")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", config.LogLevel)
	assert.Equal(t, int32(250), config.CheckpointInterval)
	assert.Equal(t, "run/progress.save", config.ProgressFile)
	assert.Equal(t, constants.DefaultListFile, config.ListFile)
	assert.Equal(t, "custom", config.JobInfo)
	assert.False(t, config.DeleteOnCompletion)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "missing.yml")
	assert.True(t, errors.Is(err, utils.ErrUsage))
}

func TestLoad_BadYaml(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.yml", []byte("CheckpointInterval: [1"), 0o644))
	_, err := Load(fs, "bad.yml")
	assert.True(t, errors.Is(err, utils.ErrUsage))
}

func TestLoad_Env(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, constants.ConfigFileName, []byte("CheckpointInterval: 250\n"), 0o644))

	t.Setenv("JOBFUZZ_CHECKPOINT_INTERVAL", "500")
	t.Setenv("JOBFUZZ_LOG_LEVEL", "trace")
	t.Setenv("JOBFUZZ_LIST_FILE", "env.list")
	t.Setenv("JOBFUZZ_DEFAULT_SEED", "77")
	t.Setenv("JOBFUZZ_PRINT_LIST", "true")

	config, err := Load(fs, "")
	require.NoError(t, err)
	assert.Equal(t, int32(500), config.CheckpointInterval)
	assert.Equal(t, "trace", config.LogLevel)
	assert.Equal(t, "env.list", config.ListFile)
	assert.Equal(t, uint32(77), config.DefaultSeed)
	assert.True(t, config.PrintList)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Configurations){
		"zero interval":     func(c *Configurations) { c.CheckpointInterval = 0 },
		"empty progress":    func(c *Configurations) { c.ProgressFile = "" },
		"same paths":        func(c *Configurations) { c.ListFile = c.ProgressFile },
		"unknown log level": func(c *Configurations) { c.LogLevel = "loud" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			config := defaultConfigurations()
			mutate(config)
			assert.True(t, errors.Is(config.Validate(), utils.ErrUsage))
		})
	}
}

func TestNewJobFuzzConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "custom.yml", []byte("ListFile: custom.list\n"), 0o644))

	loaded, err := NewJobFuzzConfig(fs, "custom.yml")
	require.NoError(t, err)
	configurations := loaded.GetConfigurations()
	assert.Equal(t, "custom.list", configurations.ListFile)
	assert.Same(t, configurations, loaded.GetConfigurations())

	_, err = NewJobFuzzConfig(fs, "missing.yml")
	assert.True(t, errors.Is(err, utils.ErrUsage))
}
