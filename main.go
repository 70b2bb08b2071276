package main

import (
	"fmt"
	"os"

	"github.com/conneroisu/pathtemplate/cmd"
	"github.com/conneroisu/pathtemplate/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, errors.FormatError(err))
		os.Exit(errors.ExitCode(err))
	}
}
