package logs

import (
	"log/slog"
	"sync/atomic"

	"github.com/reusee/fnvm/cmds"
	"github.com/reusee/fnvm/modes"
)

var (
	level       = new(slog.LevelVar)
	levelByFlag atomic.Bool
)

func setLevelByFlag(l slog.Level) {
	level.Set(l)
	levelByFlag.Store(true)
}

func init() {
	cmds.Define("-log-debug", cmds.Func(func() {
		setLevelByFlag(slog.LevelDebug)
	}).Desc("set log level to debug"))
	cmds.Define("-log-info", cmds.Func(func() {
		setLevelByFlag(slog.LevelInfo)
	}).Desc("set log level to info"))
	cmds.Define("-log-warn", cmds.Func(func() {
		setLevelByFlag(slog.LevelWarn)
	}).Desc("set log level to warn"))
	cmds.Define("-log-error", cmds.Func(func() {
		setLevelByFlag(slog.LevelError)
	}).Desc("set log level to error"))
}

// DefaultLevel is the level used when no -log-* flag is given.
type DefaultLevel slog.Level

func (Module) DefaultLevel(
	mode modes.Mode,
) DefaultLevel {
	if mode == modes.ModeDevelopment {
		return DefaultLevel(slog.LevelDebug)
	}
	return DefaultLevel(slog.LevelInfo)
}
