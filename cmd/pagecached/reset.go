package main

import (
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/pagecache/internal/config"
	"github.com/unkn0wn-root/pagecache/store"
)

func newResetCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Wipe every entry of the configured store, version marker included",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := store.New(ctx, cfg.Cache.Store)
			if err != nil {
				return err
			}
			defer func() { _ = p.Close(ctx) }()

			if err := p.Reset(ctx); err != nil {
				return err
			}
			cmd.Printf("store %q reset\n", cfg.Cache.Store.Kind)
			return nil
		},
	}
}
