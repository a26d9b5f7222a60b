package logs

import (
	"fmt"
	"io"
	"os"

	"github.com/reusee/fnvm/cmds"
)

type Writer io.Writer

var logFile = cmds.Var[string]("-log-file", "append logs to a file instead of stderr")

func (Module) Writer() Writer {
	if *logFile == "" {
		return os.Stderr
	}
	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		panic(fmt.Errorf("open log file: %w", err))
	}
	return f
}
