// Command pagecached serves a directory of markdown pages through pagecache.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is stamped at build time (-ldflags "-X main.version=...") and is
// the default cache version when the config leaves it empty.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "pagecached",
		Short:         "Serve rendered markdown pages behind a read-through cache",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(newServeCmd(&cfgPath), newResetCmd(&cfgPath))
	return root
}
