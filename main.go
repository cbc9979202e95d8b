package main

import (
	"errors"
	"fmt"
	"os"

	"ktx-reserve-cli/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := cmd.Execute(version, commit); err != nil {
		if errors.Is(err, cmd.ErrCancelled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
