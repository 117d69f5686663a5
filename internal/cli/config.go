package cli

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/FL1CKfps/Harmony-player/internal/config"
	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing Harmony configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, defaults and environment overrides included.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	// The file may not exist yet, so skip loading it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  saavn.base_url          Song search API address
  saavn.timeout           Request timeout in seconds
  youtube.api_key         YouTube Data API key (enables trending)
  youtube.region          Region code for trending, e.g. IN
  lastfm.api_key          Last.fm API key (enables similar tracks)
  storage.backend         file, sqlite or memory
  storage.path            Library location
  playback.volume         Default volume (0-100)
  playback.shuffle        Default shuffle state (true/false)
  playback.repeat         Default repeat mode (off/one/all)
  cache.similar_ttl       Similar tracks cache lifetime, e.g. 24h
  cache.trending_ttl      Trending cache lifetime
  cache.suggestions_ttl   Suggestions cache lifetime
  cache.max_entries       Maximum cached artists
  notify.desktop          Desktop notifications (true/false)
  metrics.listen          Metrics address, e.g. 127.0.0.1:9090
  tui.theme               auto, dark or light
  tui.refresh_interval    Dashboard refresh in milliseconds
  log.level               debug, info, warn or error
  log.file                Log file path

Examples:
  harmony config set playback.volume 60
  harmony config set youtube.api_key AIza...`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return printJSON(cfg)
	}

	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := configPath()
	if JSONOutput() {
		_, err := os.Stat(path)
		return printJSON(map[string]any{"path": path, "exists": err == nil})
	}
	fmt.Println(path)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return herrors.WithSuggestion(fmt.Errorf("%w: %s", herrors.ErrConfigNotFound, path),
			"Run 'harmony config init' first")
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, path)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeConfig(path, config.Default()); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "created", "path": path})
	}
	fmt.Printf("Created config file: %s\n", path)
	fmt.Println("\nOptional next steps:")
	fmt.Println("  1. Set youtube.api_key for trending songs (or HARMONY_YOUTUBE_API_KEY)")
	fmt.Println("  2. Set lastfm.api_key for better suggestions (or HARMONY_LASTFM_API_KEY)")
	fmt.Println("  3. Run 'harmony ui' to start listening")
	return nil
}

// configPath is the --config file, or the one config.Load would use.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.Path()
}

// writeConfig saves v to path.
func writeConfig(path string, v any) error {
	if err := config.Save(path, v); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// configKeyKinds lists the settable keys and the TOML type of each.
var configKeyKinds = map[string]string{
	"saavn.base_url":        "string",
	"saavn.timeout":         "int",
	"youtube.api_key":       "string",
	"youtube.region":        "string",
	"lastfm.api_key":        "string",
	"storage.backend":       "string",
	"storage.path":          "string",
	"playback.volume":       "int",
	"playback.shuffle":      "bool",
	"playback.repeat":       "string",
	"cache.similar_ttl":     "string",
	"cache.trending_ttl":    "string",
	"cache.suggestions_ttl": "string",
	"cache.max_entries":     "int",
	"notify.desktop":        "bool",
	"metrics.listen":        "string",
	"tui.theme":             "string",
	"tui.refresh_interval":  "int",
	"log.level":             "string",
	"log.file":              "string",
	"log.max_size":          "int",
	"log.max_backups":       "int",
	"log.max_age":           "int",
}

// typedConfigValue converts value to the type key is stored as.
func typedConfigValue(key, value string) (any, error) {
	kind, ok := configKeyKinds[key]
	if !ok {
		return nil, herrors.WithSuggestion(fmt.Errorf("unknown config key %q", key),
			"Run 'harmony config set --help' for the supported keys")
	}
	switch kind {
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer for %s", key)
		}
		return n, nil
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			switch strings.ToLower(value) {
			case "yes", "on":
				return true, nil
			case "no", "off":
				return false, nil
			}
			return nil, fmt.Errorf("value must be true or false for %s", key)
		}
		return b, nil
	default:
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	typed, err := typedConfigValue(key, value)
	if err != nil {
		return err
	}

	path := configPath()
	raw := map[string]any{}
	if data, err := os.ReadFile(path); err == nil {
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config: %w", err)
	}

	section, field, _ := strings.Cut(key, ".")
	sectionMap, ok := raw[section].(map[string]any)
	if !ok {
		sectionMap = map[string]any{}
		raw[section] = sectionMap
	}
	sectionMap[field] = typed

	// Reject values the loader would refuse before writing them out.
	var check config.Config
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if _, err := toml.Decode(buf.String(), &check); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	check.ApplyDefaults()
	if err := check.Validate(); err != nil {
		return fmt.Errorf("%w: %w", herrors.ErrInvalidConfig, err)
	}

	if err := writeConfig(path, raw); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "updated", "key": key, "value": value})
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}
