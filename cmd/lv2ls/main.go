// Command lv2ls lists the LV2 plugins on the search path.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/geoknoesis/lv2-go/internal/cliutil"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lv2ls",
		Short: "List installed LV2 plugins",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	cliutil.AddWorldFlags(rootCmd)
	rootCmd.Flags().BoolP("names", "n", false, "Show names instead of URIs")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	world, err := cliutil.OpenWorld(cmd)
	if err != nil {
		return err
	}
	defer world.Close()

	names, _ := cmd.Flags().GetBool("names")
	out := cmd.OutOrStdout()
	for p := range world.Plugins().All() {
		if names {
			fmt.Fprintln(out, p.Name().String())
		} else {
			fmt.Fprintln(out, p.URI().String())
		}
	}
	return nil
}
