package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-users"
)

type zerologAdapter struct {
	log zerolog.Logger
}

func newLogger(component string) zerologAdapter {
	return zerologAdapter{
		log: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().
			Timestamp().
			Str("component", component).
			Logger(),
	}
}

func (l zerologAdapter) Debug(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l zerologAdapter) Info(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l zerologAdapter) Warn(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l zerologAdapter) Error(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}

var _ users.Logger = zerologAdapter{}
