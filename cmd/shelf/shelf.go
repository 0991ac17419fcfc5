// Package shelfcmder assembles the shelf root command.
package shelfcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/shelf/cmd/shelf/ask"
	authcmder "github.com/papercomputeco/shelf/cmd/shelf/auth"
	chatcmder "github.com/papercomputeco/shelf/cmd/shelf/chat"
	configcmder "github.com/papercomputeco/shelf/cmd/shelf/config"
	initcmder "github.com/papercomputeco/shelf/cmd/shelf/init"
	reindexcmder "github.com/papercomputeco/shelf/cmd/shelf/reindex"
	seedcmder "github.com/papercomputeco/shelf/cmd/shelf/seed"
	servecmder "github.com/papercomputeco/shelf/cmd/shelf/serve"
	versioncmder "github.com/papercomputeco/shelf/cmd/version"
)

const shelfLongDesc string = `Shelf is a storefront backend with a catalog-aware assistant.

Run the server:
  shelf serve          Run the product, order and chat API

Work with data:
  shelf seed           Fill the catalog with generated products and orders
  shelf reindex        Rebuild the vector store from the catalog

Talk to the assistant:
  shelf ask            Ask a one-shot question
  shelf chat           Start an interactive chat session`

const shelfShortDesc string = "Shelf - storefront backend and assistant"

func NewShelfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "shelf",
		Short:        shelfShortDesc,
		Long:         shelfLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .shelf/ config directory")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(reindexcmder.NewReindexCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
