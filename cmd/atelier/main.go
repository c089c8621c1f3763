package main

import (
	"fmt"
	"os"
)

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

// execute runs the command line and prints the error it fails with, if any.
func execute() error {
	err := RootCmd.Execute()
	if err != nil {
		fmt.Fprintln(RootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}
