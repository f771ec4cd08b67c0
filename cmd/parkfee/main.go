package main

import (
	"os"

	"github.com/tzander/parkfee-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
