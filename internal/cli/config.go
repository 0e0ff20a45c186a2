package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/codelens/internal/config"
)

var flagForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage codelens configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config.yaml holding every default",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ConfigPath()
		if _, err := os.Stat(path); err == nil && !flagForce {
			fmt.Fprintf(os.Stderr, "Config file already exists at %s (use --force to overwrite)\n", path)
			return nil
		}
		if err := config.Save(config.Default()); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Config file written to %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one key in config.yaml, keeping the others",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setFileField(args[0], args[1])
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(os.Stdout, "%s: %s = %s\n", config.ConfigPath(), args[0], args[1])
		return nil
	},
}

// setFileField applies key=value to the file's contents. Without a file it
// starts from the defaults so the new file is complete.
func setFileField(key, value string) (config.Config, error) {
	cfg, err := config.LoadFile()
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return config.Config{}, err
	}
	if err := config.SetField(&cfg, key, value); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration after all sources are merged",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		return showConfig(os.Stdout, cfg, flagJSON)
	},
}

func showConfig(w io.Writer, cfg config.Config, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	source := "not found, defaults in effect"
	if _, err := os.Stat(config.ConfigPath()); err == nil {
		source = "loaded"
	}
	fmt.Fprintf(w, "# %s (%s)\n", config.ConfigPath(), source)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

func init() {
	configInitCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing config file")
	configShowCmd.Flags().BoolVar(&flagJSON, "json", false, "Print as JSON")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
}
