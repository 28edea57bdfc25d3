package mrfsk

// Diagnostics go through charmbracelet/log, which takes care of
// colouring by level when stderr is a terminal.

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "mrfsk",
	Level:  log.InfoLevel,
})

// Logger returns the package logger so tools can share its settings.
func Logger() *log.Logger {
	return logger
}

/*------------------------------------------------------------------
 *
 * Name:	SetLogLevel
 *
 * Purpose:	Select how chatty we are.
 *
 * Inputs:	level	- "debug", "info", "warn", "error" or "fatal".
 *
 *------------------------------------------------------------------*/

func SetLogLevel(level string) error {
	var l, err = log.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.SetLevel(l)
	return nil
}

func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}
