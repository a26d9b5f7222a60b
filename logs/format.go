package logs

import (
	"os"

	"github.com/mattn/go-isatty"
)

type Format uint8

const (
	FormatText Format = iota + 1
	FormatJSON
)

// Format is text for terminals and JSON for everything else.
func (Module) Format(
	writer Writer,
) Format {
	if file, ok := writer.(*os.File); ok {
		fd := file.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			return FormatText
		}
	}
	return FormatJSON
}
