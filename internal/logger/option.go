package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// floorCore raises the minimum level of a wrapped core without touching
// the shared atomic level.
type floorCore struct {
	zapcore.Core

	// floor is the lowest level this core lets through.
	floor zapcore.Level
}

// Enabled reports whether lvl passes both the floor and the wrapped core.
func (c *floorCore) Enabled(lvl zapcore.Level) bool {
	return c.floor.Enabled(lvl) && c.Core.Enabled(lvl)
}

// Check adds the core to ce when the entry passes the floor.
//
//nolint:gocritic // AddCore requires ent to be passed by value.
func (c *floorCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}

	return ce
}

// With keeps the floor on derived cores.
//
//nolint:ireturn // zapcore.Core is the interface zap expects.
func (c *floorCore) With(fields []zapcore.Field) zapcore.Core {
	return &floorCore{c.Core.With(fields), c.floor}
}

// WithFloor returns an option that silences entries below lvl, used by
// commands whose stdout output would otherwise be buried under progress logs.
//
//nolint:ireturn // zap.Option is the type zap expects.
func WithFloor(lvl zapcore.Level) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &floorCore{core, lvl}
	})
}
