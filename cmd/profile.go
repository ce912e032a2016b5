package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/profile"
)

const (
	PromptDone = "done"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show and edit the stored candidate profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the profile with its completeness",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, _ []string) error {
		p, err := e.profiles.Load(ctx)
		if err != nil {
			return err
		}
		return printProfile(cmd.OutOrStdout(), &p)
	}),
}

var profileSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Set a field: name, bio, experience, location, salary, skills or accessibility",
	Args:  cobra.ExactArgs(2),
	RunE: withEnv(func(ctx context.Context, e *env, _ *cobra.Command, args []string) error {
		return updateProfile(ctx, e, func(p *profile.Profile) error {
			return p.SetField(args[0], args[1])
		})
	}),
}

var profileAddSkillCmd = &cobra.Command{
	Use:   "add-skill <skill>...",
	Short: "Append skills",
	Args:  cobra.MinimumNArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, _ *cobra.Command, args []string) error {
		return updateProfile(ctx, e, func(p *profile.Profile) error {
			for _, skill := range args {
				if err := p.AddSkill(skill); err != nil {
					return err
				}
			}
			return nil
		})
	}),
}

var profileRemoveSkillCmd = &cobra.Command{
	Use:   "remove-skill <skill>",
	Short: "Remove a skill",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, _ *cobra.Command, args []string) error {
		return updateProfile(ctx, e, func(p *profile.Profile) error {
			if !p.RemoveSkill(args[0]) {
				return fmt.Errorf("there is no such skill %q", args[0])
			}
			return nil
		})
	}),
}

var profileToggleNeedCmd = &cobra.Command{
	Use:   "toggle-need <need>",
	Short: "Add or remove an accessibility need",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		var present bool
		err := updateProfile(ctx, e, func(p *profile.Profile) error {
			present = p.ToggleAccessibility(args[0])
			return nil
		})
		if err != nil {
			return err
		}
		state := "removed"
		if present {
			state = "added"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", profile.LabelFor(profile.AccessibilityOptions, args[0]), state)
		return nil
	}),
}

var profileResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the empty profile",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, _ *cobra.Command, _ []string) error {
		if _, err := e.profiles.Reset(ctx); err != nil {
			return err
		}
		e.logger.Info("profile reset")
		return nil
	}),
}

var profileExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the profile as JSON to a file or stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error {
		p, err := e.profiles.Load(ctx)
		if err != nil {
			return err
		}
		data, err := p.Export()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		if err := os.WriteFile(args[0], data, 0o600); err != nil {
			return fmt.Errorf("write profile: %w", err)
		}
		e.logger.Info("exported profile", zap.String("filename", args[0]))
		return nil
	}),
}

var profileImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the profile with a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(ctx context.Context, e *env, _ *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read profile: %w", err)
		}
		p, err := profile.Import(data)
		if err != nil {
			return err
		}
		if err := e.profiles.Save(ctx, p); err != nil {
			return err
		}
		e.logger.Info("imported profile", zap.String("filename", args[0]), zap.Int("completeness", p.Completeness()))
		return nil
	}),
}

var profileWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Fill the profile interactively",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(ctx context.Context, e *env, cmd *cobra.Command, _ []string) error {
		current, err := e.profiles.Load(ctx)
		if err != nil {
			return err
		}

		fields, err := runWizard(&current)
		if err != nil {
			return err
		}

		p, err := e.profiles.Update(ctx, func(p *profile.Profile) error {
			if err := p.Merge(fields); err != nil {
				return err
			}
			return p.Check()
		})
		if err != nil {
			return err
		}
		return printProfile(cmd.OutOrStdout(), &p)
	}),
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(
		profileShowCmd,
		profileSetCmd,
		profileAddSkillCmd,
		profileRemoveSkillCmd,
		profileToggleNeedCmd,
		profileResetCmd,
		profileExportCmd,
		profileImportCmd,
		profileWizardCmd,
	)
}

type envAction func(ctx context.Context, e *env, cmd *cobra.Command, args []string) error

func withEnv(action envAction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		e := setup(ctx)
		defer e.close()
		return action(ctx, e, cmd, args)
	}
}

// updateProfile applies fn, marks the profile as created and rejects
// structurally invalid results without writing them.
func updateProfile(ctx context.Context, e *env, fn func(*profile.Profile) error) error {
	p, err := e.profiles.Update(ctx, func(p *profile.Profile) error {
		if err := fn(p); err != nil {
			return err
		}
		p.ProfileCreated = true
		p.Normalize()
		return p.Check()
	})
	if err != nil {
		return err
	}
	e.logger.Info("profile saved",
		zap.Int("skills", len(p.Skills)),
		zap.Int("completeness", p.Completeness()),
	)
	return nil
}

func printProfile(w io.Writer, p *profile.Profile) error {
	data, err := p.Export()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	fmt.Fprintf(w, "completeness: %d%%\n", p.Completeness())
	if p.Experience != "" {
		fmt.Fprintf(w, "experience: %s\n", profile.LabelFor(profile.ExperienceLevels, p.Experience))
	}
	for _, problem := range p.Validate() {
		fmt.Fprintf(w, "- %s\n", problem)
	}
	if !p.IsMatchEligible() {
		fmt.Fprintln(w, "matching uses neutral scores until the profile has a skill and a bio")
	}
	return nil
}

// runWizard asks for every profile field, offering the current values as defaults.
func runWizard(current *profile.Profile) (map[string]any, error) {
	name, err := (&promptui.Prompt{Label: "Name", Default: current.Name, AllowEdit: true}).Run()
	if err != nil {
		return nil, err
	}

	bio, err := (&promptui.Prompt{
		Label:     "Bio",
		Default:   current.Bio,
		AllowEdit: true,
		Validate: func(input string) error {
			if utf8.RuneCountInString(strings.TrimSpace(input)) < profile.MinBioLength {
				return fmt.Errorf("bio should be at least %d characters", profile.MinBioLength)
			}
			return nil
		},
	}).Run()
	if err != nil {
		return nil, err
	}

	levels := make([]string, 0, len(profile.ExperienceLevels))
	for _, level := range profile.ExperienceLevels {
		levels = append(levels, level.Label)
	}
	levelIdx, _, err := (&promptui.Select{Label: "Experience", Items: levels}).Run()
	if err != nil {
		return nil, err
	}

	skills, err := (&promptui.Prompt{
		Label:     "Skills (comma separated, e.g. " + strings.Join(profile.SuggestedSkills[:3], ", ") + ")",
		Default:   strings.Join(current.Skills, ", "),
		AllowEdit: true,
	}).Run()
	if err != nil {
		return nil, err
	}

	needs, err := selectNeeds(current.Accessibility)
	if err != nil {
		return nil, err
	}

	location, err := (&promptui.Prompt{Label: "Location", Default: current.Location, AllowEdit: true}).Run()
	if err != nil {
		return nil, err
	}

	salary, err := (&promptui.Prompt{Label: "Salary expectation", Default: current.Salary, AllowEdit: true}).Run()
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"name":          strings.TrimSpace(name),
		"bio":           strings.TrimSpace(bio),
		"experience":    profile.ExperienceLevels[levelIdx].Value,
		"skills":        splitSkills(skills),
		"accessibility": needs,
		"location":      strings.TrimSpace(location),
		"salary":        strings.TrimSpace(salary),
	}, nil
}

// selectNeeds toggles accessibility needs until done is chosen.
func selectNeeds(initial []string) ([]string, error) {
	needs := slices.Clone(initial)
	for {
		items := make([]string, 0, len(profile.AccessibilityOptions)+1)
		for _, option := range profile.AccessibilityOptions {
			mark := "[ ]"
			if slices.Contains(needs, option.Value) {
				mark = "[x]"
			}
			items = append(items, mark+" "+option.Label)
		}
		items = append(items, PromptDone)

		idx, selected, err := (&promptui.Select{Label: "Accessibility needs", Items: items}).Run()
		if err != nil {
			return nil, err
		}
		if selected == PromptDone {
			if needs == nil {
				needs = []string{}
			}
			return needs, nil
		}

		value := profile.AccessibilityOptions[idx].Value
		if i := slices.Index(needs, value); i >= 0 {
			needs = slices.Delete(needs, i, i+1)
		} else {
			needs = append(needs, value)
		}
	}
}

func splitSkills(value string) []string {
	out := []string{}
	for _, skill := range strings.Split(value, ",") {
		skill = strings.TrimSpace(skill)
		if skill != "" && !slices.Contains(out, skill) {
			out = append(out, skill)
		}
	}
	return out
}
