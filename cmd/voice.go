package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/ai"
	"github.com/spigell/nexus/internal/filtering"
	"github.com/spigell/nexus/internal/matching"
	"github.com/spigell/nexus/internal/profile"
	"github.com/spigell/nexus/internal/voice"
)

const voiceTopResults = 5

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Control the page with spoken commands, one utterance per input line",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runVoice(cmd)
	},
}

func init() {
	rootCmd.AddCommand(voiceCmd)

	voiceCmd.Flags().String("catalog", "", "a JSON file with jobs (default is the built-in catalog)")
	voiceCmd.Flags().Bool("commands", false, "print the example commands and exit")
}

func runVoice(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if flagBool(cmd, "commands") {
		for _, example := range voice.Commands() {
			fmt.Fprintf(out, "%-14s %-24s %s\n", example.Category, example.Phrase, example.Description)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e := setup(ctx)
	defer e.close()
	log := e.logger

	catalog, err := loadCatalog(catalogPath(cmd, e.config))
	if err != nil {
		return err
	}

	matcher, err := newMatcher(ctx, e, catalog.Items)
	if err != nil {
		return err
	}

	board := &jobBoard{matcher: matcher, profiles: e.profiles, out: out, logger: log}
	page := voice.NewPage(out, voice.PageHooks{
		MatchJobs:   board.match,
		FilterJobs:  board.filter,
		SaveProfile: board.saveProfile,
	})

	speaker := voice.NewConsoleSpeaker(out)
	dispatcher := voice.NewDispatcher(page, e.settings, speaker, log)

	var resolver voice.CommandResolver
	generator, err := newGenerator(ctx, e.config, log)
	if err != nil {
		log.Warn("free-form commands are disabled", zap.Error(err))
	}
	if generator != nil {
		resolver = ai.NewResolver(generator, ai.NewHistory(e.config.Voice.HistoryLimit), log, e.config.Voice.MaxLogLength)
		log.Info("free-form commands enabled", zap.String("model", generator.Model()))
	}

	session := voice.NewSession(
		voice.NewLineRecognizer(cmd.InOrStdin()),
		voice.NewInterpreter(resolver, log),
		dispatcher,
		speaker,
		e.settings,
		log,
		voice.WithRestartDelay(e.config.Voice.RestartDelay),
		voice.WithNotifier(func(msg string) { fmt.Fprintf(out, "! %s\n", msg) }),
	)

	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("start voice session: %w", err)
	}

	err = session.Run(ctx)
	if errors.Is(err, context.Canceled) {
		session.Stop(context.Background())
		return nil
	}
	return err
}

// jobBoard backs the job section of the voice page: it keeps the last
// ranked batch and re-renders it when the category filter changes.
type jobBoard struct {
	matcher  *matching.Matcher
	profiles profileStore
	out      io.Writer
	logger   *zap.Logger

	mu     sync.Mutex
	latest *matching.Batch
}

type profileStore interface {
	Load(ctx context.Context) (profile.Profile, error)
	Update(ctx context.Context, fn func(*profile.Profile) error) (profile.Profile, error)
}

func (b *jobBoard) match(ctx context.Context) error {
	p, err := b.profiles.Load(ctx)
	if err != nil {
		return err
	}

	batch := b.matcher.Match(ctx, &p)
	switch {
	case batch.Degraded:
		b.logger.Warn("matching degraded", zap.String("error", batch.Error))
		fmt.Fprintf(b.out, "-> scores unavailable: %s\n", batch.Error)
	case !p.IsMatchEligible():
		fmt.Fprintf(b.out, "-> profile is incomplete, showing neutral scores: %s\n", strings.Join(p.Validate(), "; "))
	}

	b.mu.Lock()
	b.latest = batch
	b.mu.Unlock()

	fmt.Fprintf(b.out, "-> %d jobs ranked, %d strong matches, average %d%%\n",
		batch.Stats.TotalJobs, batch.Stats.MatchedJobs, batch.Stats.AverageScore)
	printResults(b.out, batch.Top(voiceTopResults), false)
	return nil
}

func (b *jobBoard) filter(category string) error {
	b.mu.Lock()
	batch := b.latest
	b.mu.Unlock()

	var results []matching.Result
	if batch != nil {
		results = batch.Results
	}

	filtered, err := filtering.Run(context.Background(),
		&filtering.Config{Category: category},
		filtering.Deps{Logger: b.logger},
		[]filtering.Filter{filtering.NewCategory()},
		results,
	)
	if err != nil {
		return err
	}
	if batch == nil {
		return nil
	}

	fmt.Fprintf(b.out, "-> %d %s jobs\n", len(filtered), category)
	if len(filtered) > voiceTopResults {
		filtered = filtered[:voiceTopResults]
	}
	printResults(b.out, filtered, false)
	return nil
}

func (b *jobBoard) saveProfile(ctx context.Context) error {
	_, err := b.profiles.Update(ctx, func(p *profile.Profile) error {
		p.ProfileCreated = true
		p.Normalize()
		return p.Check()
	})
	return err
}
