package main

import (
	"os"

	servecmder "github.com/papercomputeco/shelf/cmd/shelf/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()
	cmd.Use = "shelfapi"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .shelf/ config directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
