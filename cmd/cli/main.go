package main

import (
	"os"

	"github.com/swmm-toolbox/cmd/cli/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
