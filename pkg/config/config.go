package config

import (
	"errors"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
	"io/fs"
	"jobfuzz/pkg/constants"
	"jobfuzz/pkg/utils"
)

// Configurations holds every tunable of a campaign that is not a positional argument.
type Configurations struct {
	LogLevel           string `json:"logLevel" yaml:"LogLevel"`
	CheckpointInterval int32  `json:"checkpointInterval" yaml:"CheckpointInterval"`
	ProgressFile       string `json:"progressFile" yaml:"ProgressFile"`
	ListFile           string `json:"listFile" yaml:"ListFile"`
	JobInfo            string `json:"jobInfo" yaml:"JobInfo"`
	InitialJobInfo     string `json:"initialJobInfo" yaml:"InitialJobInfo"`
	DefaultSeed        uint32 `json:"defaultSeed" yaml:"DefaultSeed"`
	DeleteOnCompletion bool   `json:"deleteOnCompletion" yaml:"DeleteOnCompletion"`
	PrintList          bool   `json:"printList" yaml:"PrintList"`
}

// JobFuzzConfig hands out the resolved configuration of one command invocation.
type JobFuzzConfig interface {
	GetConfigurations() *Configurations
}

type jobFuzzConfig struct {
	configurations *Configurations
}

// NewJobFuzzConfig resolves defaults, the config file at path and the
// environment once. See Load for how path is looked up.
func NewJobFuzzConfig(fs afero.Fs, path string) (JobFuzzConfig, error) {
	configurations, err := Load(fs, path)
	if err != nil {
		return nil, err
	}
	return &jobFuzzConfig{configurations: configurations}, nil
}

func (c *jobFuzzConfig) GetConfigurations() *Configurations {
	return c.configurations
}

func defaultConfigurations() *Configurations {
	return &Configurations{
		LogLevel:           "INFO",
		CheckpointInterval: constants.DefaultCheckpointInterval,
		ProgressFile:       constants.DefaultProgressFile,
		ListFile:           constants.DefaultListFile,
		JobInfo:            constants.DefaultJobInfo,
		InitialJobInfo:     constants.DefaultInitialJobInfo,
		DefaultSeed:        constants.DefaultSeed,
		DeleteOnCompletion: true,
	}
}

// Load builds the configuration from defaults, the YAML file at path and
// JOBFUZZ_* environment variables, in increasing precedence. An empty path
// looks for jobfuzz.yml in the working directory and tolerates its absence.
func Load(fs afero.Fs, path string) (*Configurations, error) {
	config := defaultConfigurations()

	explicit := path != ""
	if !explicit {
		path = constants.ConfigFileName
	}
	if err := getConfigFromFile(fs, path, explicit, config); err != nil {
		return nil, err
	}
	getConfigFromEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func getConfigFromFile(afs afero.Fs, path string, required bool, config *Configurations) error {
	data, err := afero.ReadFile(afs, path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return utils.WrapError(utils.UsageError, err, "config file %s", path)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return utils.WrapError(utils.UsageError, err, "config file %s", path)
	}
	return nil
}

func getConfigFromEnv(config *Configurations) {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()

	if v.IsSet("log_level") {
		config.LogLevel = v.GetString("log_level")
	}
	if v.IsSet("checkpoint_interval") {
		config.CheckpointInterval = v.GetInt32("checkpoint_interval")
	}
	if v.IsSet("progress_file") {
		config.ProgressFile = v.GetString("progress_file")
	}
	if v.IsSet("list_file") {
		config.ListFile = v.GetString("list_file")
	}
	if v.IsSet("job_info") {
		config.JobInfo = v.GetString("job_info")
	}
	if v.IsSet("initial_job_info") {
		config.InitialJobInfo = v.GetString("initial_job_info")
	}
	if v.IsSet("default_seed") {
		config.DefaultSeed = v.GetUint32("default_seed")
	}
	if v.IsSet("delete_on_completion") {
		config.DeleteOnCompletion = v.GetBool("delete_on_completion")
	}
	if v.IsSet("print_list") {
		config.PrintList = v.GetBool("print_list")
	}
}

func (c *Configurations) Validate() error {
	if c.CheckpointInterval <= 0 {
		return utils.NewError(utils.UsageError, "checkpoint interval must be positive, got %d", c.CheckpointInterval)
	}
	if c.ProgressFile == "" || c.ListFile == "" {
		return utils.NewError(utils.UsageError, "progress and list file names must not be empty")
	}
	if c.ProgressFile == c.ListFile {
		return utils.NewError(utils.UsageError, "progress and list artifacts share the path %s", c.ProgressFile)
	}
	if len(c.JobInfo) > constants.MaxJobInfoLength || len(c.InitialJobInfo) > constants.MaxJobInfoLength {
		return utils.NewError(utils.UsageError, "job info is limited to %d bytes", constants.MaxJobInfoLength)
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return utils.NewError(utils.UsageError, "unknown log level %q", c.LogLevel)
	}
	return nil
}
