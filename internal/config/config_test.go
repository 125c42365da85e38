package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxUploadBytes)
}

func TestValidate_RejectsBadPort(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	assert.Error(t, cfg.validate())

	cfg.Server.Port = 70000
	assert.Error(t, cfg.validate())
}

func TestValidate_CoercesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestMergeConfigs_EnvTakesPrecedence(t *testing.T) {
	fileCfg := Config{}
	fileCfg.Server.Port = 9000
	fileCfg.Server.ReadTimeout = 5 * time.Second
	fileCfg.Logging.Level = "debug"
	fileCfg.Analysis.ExtraGroupKeys = []string{"tariff_code"}

	envCfg := Config{}
	envCfg.Server.Port = 8081

	merged := mergeConfigs(fileCfg, envCfg)

	// Env-set values win; unset values fall back to the file.
	assert.Equal(t, 8081, merged.Server.Port)
	assert.Equal(t, 5*time.Second, merged.Server.ReadTimeout)
	assert.Equal(t, "debug", merged.Logging.Level)
	assert.Equal(t, []string{"tariff_code"}, merged.Analysis.ExtraGroupKeys)
}

func TestPathsResolution(t *testing.T) {
	paths, err := GetPaths()
	require.NoError(t, err)

	assert.NotEmpty(t, paths.ExecutableDir)
	assert.Contains(t, paths.GetReportPath("out.xlsx"), paths.ReportsDir)
	assert.Equal(t, "/abs/out.xlsx", paths.GetReportPath("/abs/out.xlsx"))
}
