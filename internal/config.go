package internal

import "time"

// Config is the environment-driven configuration shared by the binaries.
type Config struct {
	DirectoryURL     string        `env:"DIRECTORY_URL,default=https://hr2.sibers.com/test/frontend/users.json"`
	DirectoryTimeout time.Duration `env:"DIRECTORY_TIMEOUT,default=5s"`
	BadgerFilepath   string        `env:"BADGER_FILEPATH,required=true"`
	Topic            string        `env:"TOPIC,default=rtchat_v4_bc"`
	BufferSize       int           `env:"BUFFER_SIZE,default=16"`
	SessionTTL       time.Duration `env:"SESSION_TTL,default=12h"`
	RestartInterval  time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	LogLevel         string        `env:"LOG_LEVEL,default=INFO"`
}
