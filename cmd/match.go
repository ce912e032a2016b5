package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/filtering"
	"github.com/spigell/nexus/internal/logger"
	"github.com/spigell/nexus/internal/matching"
)

const (
	PromptBack = "back"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank the job catalog against the stored profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("catalog", "", "a JSON file with jobs (default is the built-in catalog)")
	matchCmd.Flags().Int("min-score", 0, "drop results below this match score")
	matchCmd.Flags().Int("max-score", 100, "drop results above this match score")
	matchCmd.Flags().StringSlice("tags", nil, "keep results with a tag containing any of these")
	matchCmd.Flags().String("location", "", "keep results whose location contains this")
	matchCmd.Flags().String("category", filtering.CategoryAll, "all, remote, flexible, accessible or a domain name")
	matchCmd.Flags().Int("top", 0, "keep only the first n results")
	matchCmd.Flags().Bool("explain", false, "print why every result matches")
	matchCmd.Flags().Bool("output-json", false, "print the ranked batch as JSON")
	matchCmd.Flags().BoolP("interactive", "i", false, "browse results and their explanations")

	viper.BindPFlag("matching.min-score", matchCmd.Flags().Lookup("min-score"))
}

func runMatch(cmd *cobra.Command) error {
	ctx := context.Background()
	e := setup(ctx)
	defer e.close()

	log := e.logger
	log.Info("starting the nexus matcher", zap.String("version", version))

	p, err := e.profiles.Load(ctx)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	for _, problem := range p.Validate() {
		log.Warn("profile is incomplete", zap.String("problem", problem))
	}

	catalog, err := loadCatalog(catalogPath(cmd, e.config))
	if err != nil {
		return err
	}
	log.Info("loaded job catalog", zap.Int("count", catalog.Len()))

	matcher, err := newMatcher(ctx, e, catalog.Items)
	if err != nil {
		return err
	}

	batch := matcher.Match(ctx, &p)
	runLog := logger.WithFields(log, zap.String(logger.FieldMatchRun, batch.RunID))
	if batch.Degraded {
		runLog.Warn("matching degraded, showing neutral scores", zap.String("error", batch.Error))
	}
	runLog.Info("matching finished",
		zap.Int("total_jobs", batch.Stats.TotalJobs),
		zap.Int("matched_jobs", batch.Stats.MatchedJobs),
		zap.Int("average_score", batch.Stats.AverageScore),
		zap.Int64("processing_time_ms", batch.Stats.ProcessingTimeMs),
	)

	results, err := filtering.Run(ctx, filterConfig(cmd, e.config), filtering.Deps{Logger: runLog}, filtering.Default(), batch.Results)
	if err != nil {
		return fmt.Errorf("filtering failed: %w", err)
	}

	if len(results) == 0 {
		log.Info("exiting", zap.String("reason", "no jobs left after filters"))
		return nil
	}

	out := cmd.OutOrStdout()
	if flagBool(cmd, "output-json") {
		filtered := *batch
		filtered.Results = results
		pretty, err := json.MarshalIndent(filtered, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(pretty))
		return nil
	}

	printResults(out, results, flagBool(cmd, "explain"))

	if flagBool(cmd, "interactive") {
		return browseResults(out, results)
	}
	return nil
}

func filterConfig(cmd *cobra.Command, config *Config) *filtering.Config {
	tags, _ := cmd.Flags().GetStringSlice("tags")
	location, _ := cmd.Flags().GetString("location")
	category, _ := cmd.Flags().GetString("category")
	maxScore, _ := cmd.Flags().GetInt("max-score")
	top, _ := cmd.Flags().GetInt("top")

	return &filtering.Config{
		MinScore:          viper.GetInt("matching.min-score"),
		MaxScore:          maxScore,
		Tags:              tags,
		Location:          location,
		Category:          category,
		ExcludedCompanies: config.Matching.ExcludedCompanies,
		Top:               top,
	}
}

// catalogPath prefers the --catalog flag over the catalog config key.
func catalogPath(cmd *cobra.Command, config *Config) string {
	if path, _ := cmd.Flags().GetString("catalog"); path != "" {
		return path
	}
	return config.Catalog
}

func flagBool(cmd *cobra.Command, name string) bool {
	flag := cmd.Flag(name)
	return flag != nil && strings.EqualFold(flag.Value.String(), "true")
}

func resultLabel(r matching.Result) string {
	return fmt.Sprintf("%3d%%  %s %s / %s / %s", r.MatchScore, r.Job.ID, r.Job.Title, r.Job.Company, r.Job.Location)
}

func printResults(w io.Writer, results []matching.Result, explain bool) {
	for _, r := range results {
		fmt.Fprintln(w, resultLabel(r))
		if !explain {
			continue
		}
		for _, line := range strings.Split(matching.Explain(r), "\n") {
			fmt.Fprintf(w, "      %s\n", line)
		}
	}
}

func browseResults(w io.Writer, results []matching.Result) error {
	items := make([]string, 0, len(results)+1)
	for _, r := range results {
		items = append(items, resultLabel(r))
	}

	for {
		resultPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: append(items, PromptBack),
			Size:  10,
		}

		idx, selected, err := resultPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		r := results[idx]
		fmt.Fprintf(w, "\n%s at %s\n%s\n", r.Job.Title, r.Job.Company, r.Job.Description)
		fmt.Fprintf(w, "semantic %d, skills %d, accessibility %d\n",
			r.Breakdown.Semantic, r.Breakdown.Skills, r.Breakdown.Accessibility)
		fmt.Fprintln(w, matching.Explain(r))
		fmt.Fprintln(w)
	}
}
