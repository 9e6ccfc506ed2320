package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func Test_Config_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", t.TempDir())

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)

	req.Equal("https://hr2.sibers.com/test/frontend/users.json", config.DirectoryURL)
	req.Equal(5*time.Second, config.DirectoryTimeout)
	req.Equal("rtchat_v4_bc", config.Topic)
	req.Equal(16, config.BufferSize)
	req.Equal(12*time.Hour, config.SessionTTL)
	req.Equal(200*time.Millisecond, config.RestartInterval)
	req.Equal("INFO", config.LogLevel)
}
