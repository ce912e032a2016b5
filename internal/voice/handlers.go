package voice

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/settings"
)

func (d *Dispatcher) registerDefaults() {
	d.Register(ActionNavigateToSection, d.navigate)
	d.Register(ActionScrollToTop, d.scroll(ScrollTop, ActionScrollToTop))
	d.Register(ActionScrollToBottom, d.scroll(ScrollBottom, ActionScrollToBottom))
	d.Register(ActionScrollUp, d.scroll(ScrollUp, ActionScrollUp))
	d.Register(ActionScrollDown, d.scroll(ScrollDown, ActionScrollDown))
	d.Register(ActionOpenAccessibilityPanel, d.panel(true, ActionOpenAccessibilityPanel))
	d.Register(ActionCloseAccessibilityPanel, d.panel(false, ActionCloseAccessibilityPanel))

	d.Register(ActionIncreaseTextSize, d.textSize(true))
	d.Register(ActionDecreaseTextSize, d.textSize(false))
	d.Register(ActionToggleDarkMode, d.toggleDarkMode)
	d.Register(ActionToggleHighContrast, d.toggleHighContrast)
	d.Register(ActionSetColorBlindMode, d.setColorBlindMode)
	d.Register(ActionIncreaseVoiceSpeed, d.voiceSpeed(true))
	d.Register(ActionDecreaseVoiceSpeed, d.voiceSpeed(false))

	d.Register(ActionOpenProfileForm, d.openProfileForm)
	d.Register(ActionSaveProfile, d.saveProfile)
	d.Register(ActionMatchJobs, d.matchJobs)
	d.Register(ActionFilterJobs, d.filterJobs)

	d.Register(ActionShowHelp, announce(announceHelp))
	d.Register(ActionDescribePage, announce(func() string { return pageDescription }))
	d.Register(ActionTranslateText, announce(func() string { return MsgTranslate }))
	d.Register(ActionAnnounceLocation, func(context.Context, map[string]any) (Outcome, error) {
		return Outcome{Announcement: announceLocation(d.surface.CurrentSection()), Force: true}, nil
	})
	d.Register(ActionRepeatLast, func(context.Context, map[string]any) (Outcome, error) {
		d.speaker.RepeatLast()
		return Outcome{}, nil
	})
	d.Register(ActionStopSpeaking, func(context.Context, map[string]any) (Outcome, error) {
		d.speaker.Cancel()
		return Outcome{}, nil
	})
	d.Register(ActionStartVoiceAssistant, func(context.Context, map[string]any) (Outcome, error) {
		return Outcome{StartListening: true}, nil
	})
	d.Register(ActionStopVoiceAssistant, func(context.Context, map[string]any) (Outcome, error) {
		return Outcome{StopListening: true}, nil
	})
}

func announce(text func() string) Handler {
	return func(context.Context, map[string]any) (Outcome, error) {
		return Outcome{Announcement: text(), Force: true}, nil
	}
}

func (d *Dispatcher) navigate(_ context.Context, params map[string]any) (Outcome, error) {
	var p sectionParams
	if err := decodeParams(params, &p); err != nil {
		return Outcome{}, err
	}
	if p.Section == "" {
		return Outcome{Announcement: announceError("I could not find that section."), Force: true}, nil
	}
	if err := d.surface.Navigate(p.Section); err != nil {
		if errors.Is(err, ErrUnknownSection) {
			return Outcome{Announcement: announceError(fmt.Sprintf("Section %s is not available yet.", p.Section)), Force: true}, nil
		}
		return Outcome{}, err
	}
	return Outcome{Announcement: announceNavigation(p.Section), Force: true}, nil
}

func (d *Dispatcher) scroll(direction ScrollDirection, action string) Handler {
	return func(context.Context, map[string]any) (Outcome, error) {
		d.surface.Scroll(direction)
		return Outcome{Announcement: confirmations[action]}, nil
	}
}

func (d *Dispatcher) panel(open bool, action string) Handler {
	return func(context.Context, map[string]any) (Outcome, error) {
		d.surface.SetAccessibilityPanel(open)
		return Outcome{Announcement: confirmations[action]}, nil
	}
}

func (d *Dispatcher) textSize(increase bool) Handler {
	return func(ctx context.Context, _ map[string]any) (Outcome, error) {
		s, err := d.settings.Update(ctx, func(s *settings.Settings) error {
			if increase {
				s.IncreaseFontSize()
			} else {
				s.DecreaseFontSize()
			}
			return nil
		})
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Announcement: announceTextSize(increase, s.FontSize)}, nil
	}
}

func (d *Dispatcher) voiceSpeed(increase bool) Handler {
	return func(ctx context.Context, _ map[string]any) (Outcome, error) {
		s, err := d.settings.Update(ctx, func(s *settings.Settings) error {
			if increase {
				s.IncreaseVoiceSpeed()
			} else {
				s.DecreaseVoiceSpeed()
			}
			return nil
		})
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Announcement: announceVoiceSpeed(s.VoiceSpeed)}, nil
	}
}

func (d *Dispatcher) toggleDarkMode(ctx context.Context, params map[string]any) (Outcome, error) {
	var p toggleParams
	if err := decodeParams(params, &p); err != nil {
		return Outcome{}, err
	}
	s, err := d.settings.Update(ctx, func(s *settings.Settings) error {
		s.SetDarkMode(p.Value)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Announcement: announceDarkMode(s.DarkMode)}, nil
}

func (d *Dispatcher) toggleHighContrast(ctx context.Context, params map[string]any) (Outcome, error) {
	var p toggleParams
	if err := decodeParams(params, &p); err != nil {
		return Outcome{}, err
	}
	s, err := d.settings.Update(ctx, func(s *settings.Settings) error {
		s.SetHighContrast(p.Value)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Announcement: announceHighContrast(s.HighContrast)}, nil
}

func (d *Dispatcher) setColorBlindMode(ctx context.Context, params map[string]any) (Outcome, error) {
	var p modeParams
	if err := decodeParams(params, &p); err != nil {
		return Outcome{}, err
	}
	s, err := d.settings.Update(ctx, func(s *settings.Settings) error {
		return s.SetColorBlindMode(p.Mode)
	})
	if errors.Is(err, settings.ErrUnknownColorBlindMode) {
		return Outcome{Announcement: announceError(fmt.Sprintf("%s is not a supported color mode.", p.Mode)), Force: true}, nil
	}
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Announcement: announceColorBlindMode(s.ColorBlindMode)}, nil
}

func (d *Dispatcher) openProfileForm(context.Context, map[string]any) (Outcome, error) {
	d.surface.OpenProfileForm()
	if err := d.surface.Navigate("jobs"); err != nil && !errors.Is(err, ErrUnknownSection) {
		return Outcome{}, err
	}
	return Outcome{Announcement: confirmations[ActionOpenProfileForm]}, nil
}

func (d *Dispatcher) saveProfile(ctx context.Context, _ map[string]any) (Outcome, error) {
	if err := d.surface.SaveProfile(ctx); err != nil {
		d.logger.Info("profile not saved", zap.Error(err))
		return Outcome{Announcement: announceError("Could not save your profile. " + err.Error()), Force: true}, nil
	}
	return Outcome{Announcement: "Profile saved.", Force: true}, nil
}

func (d *Dispatcher) matchJobs(ctx context.Context, _ map[string]any) (Outcome, error) {
	if err := d.surface.MatchJobs(ctx); err != nil {
		d.logger.Info("job matching unavailable", zap.Error(err))
		return Outcome{Announcement: announceError("Job matching is not available right now."), Force: true}, nil
	}
	return Outcome{Announcement: confirmations[ActionMatchJobs]}, nil
}

func (d *Dispatcher) filterJobs(_ context.Context, params map[string]any) (Outcome, error) {
	var p filterParams
	if err := decodeParams(params, &p); err != nil {
		return Outcome{}, err
	}
	if p.Filter == "" {
		return Outcome{}, nil
	}
	if err := d.surface.FilterJobs(p.Filter); err != nil {
		d.logger.Info("job filter rejected", zap.String("filter", p.Filter), zap.Error(err))
		return Outcome{Announcement: announceError(fmt.Sprintf("I don't know the %s filter.", p.Filter)), Force: true}, nil
	}
	return Outcome{Announcement: announceFilter(p.Filter)}, nil
}
