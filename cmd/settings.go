package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change the accessibility settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored settings",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, _ []string) error {
		s, err := e.settings.Load(ctx)
		if err != nil {
			return err
		}
		return printSettings(cmd.OutOrStdout(), s)
	}),
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, _ []string) error {
		s, err := e.settings.Reset(ctx)
		if err != nil {
			return err
		}
		e.logger.Info("settings reset")
		return printSettings(cmd.OutOrStdout(), s)
	}),
}

var settingsOnboardCmd = &cobra.Command{
	Use:   "onboard [need]...",
	Short: "Apply the presets of accessibility needs: " + strings.Join(needIDs(), ", "),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		needs := args
		if len(needs) == 0 {
			var err error
			if needs, err = selectOnboardingNeeds(); err != nil {
				return err
			}
		}

		s, err := e.settings.Update(ctx, func(s *settings.Settings) error {
			return s.CompleteOnboarding(needs)
		})
		if err != nil {
			return err
		}
		e.logger.Info("onboarding completed", zap.Strings("needs", s.SelectedNeeds))
		return printSettings(cmd.OutOrStdout(), s)
	}),
}

var settingsColorBlindCmd = &cobra.Command{
	Use:   "colorblind <mode>",
	Short: "Set the color blind mode: " + strings.Join(settings.ColorBlindModes, ", "),
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, _ *cobra.Command, args []string) error {
		_, err := e.settings.Update(ctx, func(s *settings.Settings) error {
			return s.SetColorBlindMode(args[0])
		})
		return err
	}),
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsResetCmd, settingsOnboardCmd, settingsColorBlindCmd)
}

func needIDs() []string {
	ids := make([]string, 0, len(settings.Needs))
	for _, need := range settings.Needs {
		ids = append(ids, need.ID)
	}
	return ids
}

func printSettings(w io.Writer, s settings.Settings) error {
	pretty, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(pretty))
	return nil
}

func selectOnboardingNeeds() ([]string, error) {
	items := make([]string, 0, len(settings.Needs)+1)
	for _, need := range settings.Needs {
		items = append(items, fmt.Sprintf("%s: %s", need.Name, need.Description))
	}
	items = append(items, PromptDone)

	var selected []string
	for {
		idx, choice, err := (&promptui.Select{Label: "Which kind of assistance do you need?", Items: items}).Run()
		if err != nil {
			return nil, err
		}
		if choice == PromptDone {
			return selected, nil
		}
		selected = append(selected, settings.Needs[idx].ID)
	}
}
