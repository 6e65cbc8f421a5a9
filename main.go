package main

import (
	"os"

	"github.com/Lokke/imagescale/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
