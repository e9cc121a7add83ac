package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/youngsunson/updatev2/common/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the supported analysis models",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, live, err := openSettings(cmd.Context())
		if err != nil {
			return err
		}

		current := live.ModelID()
		active := color.New(color.FgGreen, color.Bold).SprintFunc()
		for _, m := range llm.SupportedModels {
			if m == current {
				fmt.Printf("* %s\n", active(m))
				continue
			}
			fmt.Printf("  %s\n", m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
