package cmd

import (
	"log/slog"

	"github.com/OpenTraceLab/kle-pcbgen/internal/config"
	"github.com/OpenTraceLab/kle-pcbgen/pkg/keyboard"
	"github.com/OpenTraceLab/kle-pcbgen/pkg/kle"
	"github.com/OpenTraceLab/kle-pcbgen/pkg/netlist"
)

// stageError names the pipeline step that failed.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string {
	return e.stage + ": " + e.err.Error()
}

func (e *stageError) Unwrap() error {
	return e.err
}

// result is a keyboard with its matrix and nets in place.
type result struct {
	cfg  *config.Config
	kb   *keyboard.Keyboard
	nets *netlist.Netlist
}

// build runs ingest, matrix inference and net assignment on path, reporting
// each checkpoint to a LogObserver.
func build(path string, logger *slog.Logger) (*result, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, &stageError{stage: "loading config", err: err}
	}
	format, err := kle.ParseFormat(layoutFmt)
	if err != nil {
		return nil, &stageError{stage: "reading layout", err: err}
	}

	var obs keyboard.Observer = keyboard.NewLogObserver(logger)

	kb, err := kle.ParseFile(path, kle.WithFormat(format))
	if err != nil {
		return nil, &stageError{stage: "reading layout", err: err}
	}
	obs.IngestComplete(kb)

	mcfg := cfg.MatrixConfig()
	if err := kb.GenerateMatrix(mcfg); err != nil {
		return nil, &stageError{stage: "inferring matrix", err: err}
	}
	obs.MatrixComplete(kb)

	nl, err := netlist.Assign(kb, mcfg.MaxRows, mcfg.MaxColumns)
	if err != nil {
		return nil, &stageError{stage: "assigning nets", err: err}
	}
	obs.NetsComplete(kb, nl.Len())

	return &result{cfg: cfg, kb: kb, nets: nl}, nil
}
