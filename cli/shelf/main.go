package main

import (
	"os"

	shelfcmder "github.com/papercomputeco/shelf/cmd/shelf"
)

func main() {
	cmd := shelfcmder.NewShelfCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
