package main

import (
	"os"

	"github.com/gnolang/recast/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
