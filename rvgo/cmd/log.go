package cmd

import (
	"io"
	"golang.org/x/exp/slog"

	"github.com/ethereum/go-ethereum/log"
)

// Logger builds the structured logger every subcommand shares, grounded on
// the teacher's logfmt-over-stderr convention (rvgo/cmd/log.go) so emulator
// diagnostics interleave cleanly with any surrounding tooling's own
// go-ethereum-style logs.
func Logger(w io.Writer, lvl slog.Level) log.Logger {
	return log.NewLogger(log.LogfmtHandlerWithLevel(w, lvl))
}
