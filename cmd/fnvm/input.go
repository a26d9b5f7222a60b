package main

import (
	"os"

	"github.com/reusee/fnvm/cmds"
	"golang.org/x/term"
)

var argSpecs = cmds.Collect[string]("-arg", "argument as name=value, float3 as name=x,y,z")

// inputRows returns the argument rows to evaluate. Rows are read from stdin when it is not
// a terminal, with -arg values as defaults. Without stdin rows, the -arg values form one row.
func inputRows() ([]row, error) {
	defaults, err := parseRow(*argSpecs)
	if err != nil {
		return nil, err
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return []row{defaults}, nil
	}
	rows, err := readRows(os.Stdin, defaults)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []row{defaults}, nil
	}
	return rows, nil
}
