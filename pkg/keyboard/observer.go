package keyboard

import (
	"context"
	"log/slog"
)

// Observer is notified at the checkpoints of the pipeline. Implementations
// must not modify the keyboard.
type Observer interface {
	IngestComplete(kb *Keyboard)
	MatrixComplete(kb *Keyboard)
	NetsComplete(kb *Keyboard, netCount int)
}

// NopObserver ignores every checkpoint.
type NopObserver struct{}

func (NopObserver) IngestComplete(*Keyboard)    {}
func (NopObserver) MatrixComplete(*Keyboard)    {}
func (NopObserver) NetsComplete(*Keyboard, int) {}

// LogObserver reports checkpoints through a slog.Logger.
type LogObserver struct {
	Logger *slog.Logger
}

// NewLogObserver returns an observer that logs to logger, or to
// slog.Default() when logger is nil.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) IngestComplete(kb *Keyboard) {
	o.Logger.Info("Layout ingested.",
		"name", kb.Name,
		"author", kb.Author,
		"keys", kb.Len())
}

func (o *LogObserver) MatrixComplete(kb *Keyboard) {
	o.Logger.Info("Matrix generated.",
		"keys", kb.Len(),
		"rows", len(kb.Rows()),
		"columns", len(kb.Columns()))

	if o.Logger.Enabled(context.Background(), slog.LevelDebug) {
		for _, key := range kb.Keys() {
			o.Logger.Debug("Key placed.",
				"number", key.Number,
				"legend", key.Legend,
				"x", key.X,
				"y", key.Y,
				"row", key.Row(),
				"column", key.Column)
		}
	}
}

func (o *LogObserver) NetsComplete(kb *Keyboard, netCount int) {
	o.Logger.Info("Nets assigned.", "nets", netCount, "diodes", kb.Len())
}
