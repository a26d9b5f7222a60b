package main

import (
	"fmt"
	"os"

	"github.com/reusee/e5"
)

var wrap = e5.Wrap.With(e5.WrapStacktrace)

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
