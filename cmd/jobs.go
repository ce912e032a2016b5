package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/jobs"
	"github.com/spigell/nexus/internal/logger"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List the job catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runJobs(cmd)
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)

	jobsCmd.Flags().String("catalog", "", "a JSON file with jobs (default is the built-in catalog)")
	jobsCmd.Flags().String("domain", "", "keep jobs of a domain: "+strings.Join(jobs.Domains(), ", "))
	jobsCmd.Flags().Bool("remote", false, "keep remote jobs")
	jobsCmd.Flags().Bool("accessible", false, "keep jobs listing accessibility features")
	jobsCmd.Flags().Bool("report", false, "print the jobs grouped by company")
	jobsCmd.Flags().Bool("dump", false, "dump the catalog to a temporary file")
}

func runJobs(cmd *cobra.Command) error {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return fmt.Errorf("getting a config: %w", err)
	}

	catalog, err := loadCatalog(catalogPath(cmd, config))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case flagBool(cmd, "report"):
		pretty, _ := json.MarshalIndent(catalog.ReportByCompany(), "", "  ")
		fmt.Fprintln(out, string(pretty))
		return nil
	case flagBool(cmd, "dump"):
		filename, err := catalog.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump catalog to file: %w", err)
		}
		l.Info("dumping catalog to file", zap.String("filename", filename))
		return nil
	}

	items := catalog.Items
	if domain, _ := cmd.Flags().GetString("domain"); domain != "" {
		if !jobs.IsDomain(domain) {
			return fmt.Errorf("unknown domain %q, expected one of %s", domain, strings.Join(jobs.Domains(), ", "))
		}
		items = catalog.ByDomain(domain)
	}
	if flagBool(cmd, "remote") {
		items = intersect(items, catalog.Remote())
	}
	if flagBool(cmd, "accessible") {
		items = intersect(items, catalog.Accessible())
	}

	for _, job := range items {
		fmt.Fprintf(out, "%s %s / %s / %s / %s\n", job.ID, job.Title, job.Company, job.Location, job.Salary)
	}
	l.Debug("listed jobs", zap.Int("count", len(items)), zap.Int("catalog", catalog.Len()))
	return nil
}

// intersect keeps the jobs of a that are also in b, in the order of a.
func intersect(a, b []*jobs.Job) []*jobs.Job {
	in := make(map[string]bool, len(b))
	for _, job := range b {
		in[job.ID] = true
	}
	out := make([]*jobs.Job, 0, len(a))
	for _, job := range a {
		if in[job.ID] {
			out = append(out, job)
		}
	}
	return out
}
