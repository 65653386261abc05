/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return fmt.Errorf("cmd_version: could not read build info")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "metadata-dump version %s\n", readVersion(info).String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Version will be the version tag if the binary is built with "go install url/tool@version".
// If the binary is built some other way, it will be "(devel)".  It can also be set at link time.
var Version = "unknown"

type buildVersion struct {
	Version string
	// vcs.revision, vcs.time and vcs.modified from the build info
	Revision   string
	LastCommit time.Time
	Dirty      bool
}

func readVersion(info *debug.BuildInfo) buildVersion {
	v := buildVersion{Version: Version, Revision: "unknown", Dirty: true}
	if v.Version == "unknown" && info.Main.Version != "" {
		v.Version = info.Main.Version
	}
	for _, kv := range info.Settings {
		switch kv.Key {
		case "vcs.revision":
			v.Revision = kv.Value
		case "vcs.time":
			v.LastCommit, _ = time.Parse(time.RFC3339, kv.Value)
		case "vcs.modified":
			v.Dirty = kv.Value == "true"
		}
	}
	return v
}

func (v buildVersion) String() string {
	parts := make([]string, 0, 4)
	if v.Version != "unknown" && v.Version != "(devel)" && v.Version != "" {
		parts = append(parts, v.Version)
	}
	if v.Revision != "unknown" && v.Revision != "" {
		parts = append(parts, "rev", v.Revision)
		if v.Dirty {
			parts = append(parts, "dirty")
		}
	}
	if len(parts) == 0 {
		return "devel"
	}
	return strings.Join(parts, "-")
}
