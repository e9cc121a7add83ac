package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/youngsunson/updatev2/internal/model"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the saved settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved settings with the API key masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, live, err := openSettings(cmd.Context())
		if err != nil {
			return err
		}

		s := live.Current().Masked()
		key := s.APIKey
		if key == "" {
			key = "(not set)"
			if live.Credential() != "" {
				key = "(from ANALYSIS_API_KEY)"
			}
		}

		tone := string(s.Tone)
		if tone == "" {
			tone = "(off)"
		}

		fmt.Printf("file:     %s\n", store.Path())
		fmt.Printf("api key:  %s\n", key)
		fmt.Printf("model:    %s\n", s.Model)
		fmt.Printf("tone:     %s\n", tone)
		fmt.Printf("register: %s\n", s.Register)
		return nil
	},
}

var settingFields = []string{"key", "model", "tone", "register"}

var settingsSetCmd = &cobra.Command{
	Use:       "set <key|model|tone|register> <value>",
	Short:     "Change one saved setting",
	Long:      `Change one saved setting. Pass an empty value to turn the tone pass off or to clear the key.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: settingFields,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, live, err := openSettings(cmd.Context())
		if err != nil {
			return err
		}

		next := live.Current()
		field, value := strings.ToLower(args[0]), args[1]
		switch field {
		case "key":
			next.APIKey = value
		case "model":
			next.Model = value
		case "tone":
			next.Tone = model.Tone(value)
		case "register":
			next.Register = model.Register(value)
		default:
			return fmt.Errorf("unknown setting %q, expected one of %s", field, strings.Join(settingFields, ", "))
		}

		saved, err := live.Update(cmd.Context(), next)
		if err != nil {
			return err
		}

		if field == "key" {
			fmt.Printf("api key saved: %s\n", saved.MaskedKey())
			return nil
		}
		fmt.Printf("%s saved\n", field)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
