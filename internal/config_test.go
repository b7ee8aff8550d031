package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func Test_Config_Defaults(t *testing.T) {
	req := require.New(t)
	var config Config

	err := env.Unmarshal(env.EnvSet{}, &config)
	req.NoError(err)
	req.NoError(config.Validate())

	req.Equal(24*time.Hour, config.CacheTTL)
	req.Equal(50, config.CacheMaxMessages)
	req.Equal(3, config.PersistMaxAttempts)
	req.Equal(200*time.Millisecond, config.PersistRetryBackoff)
	req.Equal(90*24*time.Hour, config.RetentionPeriod)
	req.Equal("0 3 * * *", config.RetentionSchedule)
	req.Equal("New conversation", config.DefaultTitle)
	req.Equal(8081, config.InspectPort)
	req.Empty(config.BadgerFilepath)
}

func Test_Config_Overrides_And_Validation(t *testing.T) {
	req := require.New(t)
	var config Config

	err := env.Unmarshal(env.EnvSet{
		"CACHE_MAX_MESSAGES": "10",
		"PERSIST_WORKERS":    "0",
	}, &config)
	req.NoError(err)
	req.Equal(10, config.CacheMaxMessages)
	req.Error(config.Validate())
}
