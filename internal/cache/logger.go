package cache

import "github.com/rs/zerolog"

// ZerologLogger adapts a zerolog.Logger to Logger.
type ZerologLogger struct {
	Logger zerolog.Logger
}

func (l ZerologLogger) Error(msg string, err error) {
	l.Logger.Error().Err(err).Msg(msg)
}
