package cmdutil

import (
	"github.com/pachyderm/idxconvert/src/internal/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
)

// LevelFlag is a pflag.Value holding a log level name.
type LevelFlag string

var _ pflag.Value = new(LevelFlag)

func (value *LevelFlag) String() string {
	return string(*value)
}

func (value *LevelFlag) Set(s string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return errors.Wrapf(err, "invalid log level: %s", s)
	}
	*value = LevelFlag(l.String())
	return nil
}

func (value *LevelFlag) Type() string {
	return "level"
}
