/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/structs"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v2"
)

const defaultConfig = "~/.config/metadata-dump.yaml"

var (
	// Store the result of binding cobra flags
	Config string
	Debug  bool

	// Command to run to retrieve an org access token
	AuthTokenCmd []string

	InstanceURL string
	APIVersion  string
	TypesFile   string
	Org         string

	ParsedConfig YamlConfig

	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "metadata-dump"})
)

// Build the cobra command that handles our command line tool.
var rootCmd = &cobra.Command{
	Use:   "metadata-dump",
	Short: "Retrieve Salesforce metadata into local files",
	Long: `
Pull Apex classes, triggers, objects and the rest of an org's metadata down to your machine, picking
what you want with glob patterns like you would in your project's src/ directory.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if Debug {
			logger.SetLevel(log.DebugLevel)
		}

		if err := initializeConfig(cmd); err != nil {
			return fmt.Errorf("metadata-dump: failed to initialise config: %w", err)
		}
		return nil
	},
}

func init() {
	// Define cobra flags, the default value has the lowest (least significant) precedence
	rootCmd.PersistentFlags().StringVar(&Config, "config", "", "config file location (default: "+defaultConfig+", respects METADATA_DUMP_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "display debug output")
	rootCmd.PersistentFlags().StringSliceVar(&AuthTokenCmd, "auth-token-cmd", []string{}, "shell command that prints an access token for the org")
	rootCmd.PersistentFlags().StringVar(&InstanceURL, "instance-url", "", "your org's URL, e.g. https://acme.my.salesforce.com")
	rootCmd.PersistentFlags().StringVar(&APIVersion, "api-version", "", "Metadata API version (default: latest known)")
	rootCmd.PersistentFlags().StringVar(&TypesFile, "types-file", "", "YAML file replacing the built-in metadata type table")
	rootCmd.PersistentFlags().StringVarP(&Org, "org", "o", "", "use the settings of this entry under `orgs:` in the config file")
}

func initializeConfig(cmd *cobra.Command) error {
	// a config file nobody asked for by name is optional
	explicit := true
	if Config == "" {
		// Did the user provide an ENV?
		envConfig := os.Getenv("METADATA_DUMP_CONFIG")
		if envConfig != "" {
			Config = envConfig
		} else {
			// As fallback, search for config in home XDG-ish directory
			Config = defaultConfig
			explicit = false
		}
	}
	config, err := homedir.Expand(Config)
	if err != nil {
		return fmt.Errorf("metadata-dump: unable to expand homedir: %w", err)
	}
	Config = config

	yamlFile, err := os.ReadFile(Config)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		debugLog("No config file at %s, carrying on without one.\n", Config)
		ParsedConfig = YamlConfig{}
		return selectOrg(cmd, ParsedConfig)
	}
	if err != nil {
		return fmt.Errorf("metadata-dump: error reading config file: %w", err)
	}

	// I'd like to bark if a user sets a flag we don't recognise:
	if err := yaml.UnmarshalStrict(yamlFile, &ParsedConfig); err != nil {
		return fmt.Errorf("metadata-dump: issue parsing config file: %w", err)
	}

	// org entries win over the top-level settings, so they go first
	if err := selectOrg(cmd, ParsedConfig); err != nil {
		return err
	}

	if err := bindFlags(cmd, ParsedConfig); err != nil {
		return fmt.Errorf("metadata-dump: failed to bind flags: %w", err)
	}

	return nil
}

type YamlConfig struct {
	WithVCR     *bool `yaml:"with-vcr"`
	KeepScratch *bool `yaml:"keep-scratch"`

	InstanceURL  string   `yaml:"instance-url"`
	AuthTokenCmd []string `yaml:"auth-token-cmd"`
	APIVersion   string   `yaml:"api-version"`
	TypesFile    string   `yaml:"types-file"`
	ScratchDir   string   `yaml:"scratch-dir"`
	PollInterval string   `yaml:"poll-interval"`
	PollTimeout  string   `yaml:"poll-timeout"`

	Orgs map[string]OrgConfig `yaml:"orgs"`
}

// OrgConfig holds what differs between orgs, selected with --org.
type OrgConfig struct {
	InstanceURL  string   `yaml:"instance-url"`
	AuthTokenCmd []string `yaml:"auth-token-cmd"`
}

// Bind each cobra flag to its value from the config file, unless the user set it on the command
// line.
func bindFlags(cmd *cobra.Command, v YamlConfig) error {
	for _, field := range structs.Fields(v) {
		key := field.Tag("yaml")
		if key == "" {
			return fmt.Errorf("metadata-dump: could not retrieve struct tag 'yaml'")
		}
		if flag := cmd.Flag(key); flag == nil {
			// hmm... the flag is unknown.  but that can legitimately happen if you're running
			// e.g. `list types` which has no `keep-scratch` flag but your YAML file does
			// define that flag.  `orgs` never is a flag.
			continue
		}
		if cmd.Flags().Changed(key) {
			continue
		}

		switch field.Kind() {
		case reflect.Ptr:
			// YamlConfig only uses pointers for bools, so that false can be told apart from unset
			b, ok := field.Value().(*bool)
			if !ok {
				return fmt.Errorf("metadata-dump: found unrecognised field: %+v", field.Name())
			}
			if b != nil {
				if err := cmd.Flags().Set(key, fmt.Sprintf("%v", *b)); err != nil {
					return fmt.Errorf("metadata-dump: bad value for %s: %w", key, err)
				}
			}

		case reflect.String:
			s, ok := field.Value().(string)
			if !ok {
				return fmt.Errorf("metadata-dump: found unrecognised field: %+v", field.Name())
			}
			if s != "" {
				if err := cmd.Flags().Set(key, s); err != nil {
					return fmt.Errorf("metadata-dump: bad value for %s: %w", key, err)
				}
			}

		case reflect.Slice:
			ss, ok := field.Value().([]string)
			if !ok {
				return fmt.Errorf("metadata-dump: found unrecognised field: %+v", field.Name())
			}
			for _, s := range ss {
				// yes, repeatedly calling Set() appends to the slice...
				if err := cmd.Flags().Set(key, s); err != nil {
					return fmt.Errorf("metadata-dump: bad value for %s: %w", key, err)
				}
			}

		default:
			return fmt.Errorf("metadata-dump: found unrecognised field: %+v", field.Name())
		}
	}

	return nil
}

// selectOrg applies the --org entry's settings to flags the user didn't set.
func selectOrg(cmd *cobra.Command, v YamlConfig) error {
	if Org == "" {
		return nil
	}
	oc, ok := v.Orgs[Org]
	if !ok {
		known := maps.Keys(v.Orgs)
		slices.Sort(known)
		if len(known) == 0 {
			return fmt.Errorf("metadata-dump: unknown org %q, config file %s defines no orgs", Org, Config)
		}
		return fmt.Errorf("metadata-dump: unknown org %q, pick one of: %s", Org, strings.Join(known, ", "))
	}
	debugLog("Using settings for org %s.\n", Org)

	if oc.InstanceURL != "" && !cmd.Flags().Changed("instance-url") {
		if err := cmd.Flags().Set("instance-url", oc.InstanceURL); err != nil {
			return fmt.Errorf("metadata-dump: bad instance-url for org %s: %w", Org, err)
		}
	}
	if len(oc.AuthTokenCmd) > 0 && !cmd.Flags().Changed("auth-token-cmd") {
		for _, s := range oc.AuthTokenCmd {
			if err := cmd.Flags().Set("auth-token-cmd", s); err != nil {
				return fmt.Errorf("metadata-dump: bad auth-token-cmd for org %s: %w", Org, err)
			}
		}
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// ^C stops whatever is in flight, and we still get to clean up
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Flags are only available after (or inside, presumably) the .Execute() thing.
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("metadata-dump: execution error: %w", err)
	}

	return nil
}
