/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Output current config",
	Long: `
Is something not working for you?  Have a look whether your config is as you expect.
`,
	Args: cobra.ExactArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		// Note, you can only talk about persistent flags here.  Command-specific ones won't be
		// visible.
		showConfig(os.Stdout)
	},
}

func showConfig(w io.Writer) {
	fmt.Fprintf(w, "Dump current config state:\n\n")

	fmt.Fprintf(w, "  Config file: %s\n", Config)
	fmt.Fprintf(w, "  Debug: %v\n", Debug)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Org: %s\n", Org)
	fmt.Fprintf(w, "  InstanceURL: %s\n", InstanceURL)
	fmt.Fprintf(w, "  AuthTokenCmd: %v\n", AuthTokenCmd)
	fmt.Fprintf(w, "  APIVersion: %s\n", APIVersion)
	fmt.Fprintf(w, "  TypesFile: %s\n", TypesFile)

	orgs := maps.Keys(ParsedConfig.Orgs)
	slices.Sort(orgs)
	if len(orgs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Orgs:\n")
		for _, name := range orgs {
			oc := ParsedConfig.Orgs[name]
			fmt.Fprintf(w, "    - %s: %s %v\n", name, oc.InstanceURL, oc.AuthTokenCmd)
		}
	}
}

func init() {
	configCmd.AddCommand(showCmd)
}
