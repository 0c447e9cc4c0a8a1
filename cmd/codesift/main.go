// Package main provides the entry point for the codesift CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Aman-CERP/codesift/cmd/codesift/cmd"
	sifterrors "github.com/Aman-CERP/codesift/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, sifterrors.FormatForCLI(err))
		os.Exit(1)
	}
}
