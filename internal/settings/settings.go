// Package settings holds the accessibility and interface preferences of the
// local user.
package settings

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

const StorageKey = "nexus-settings"

const (
	DefaultFontSize = 16
	MinFontSize     = 12
	MaxFontSize     = 32
	FontSizeStep    = 2

	DefaultVoiceSpeed = 1.0
	MinVoiceSpeed     = 0.5
	MaxVoiceSpeed     = 2.0
	VoiceSpeedStep    = 0.1

	DefaultLanguage = "en-US"
)

const (
	ColorBlindNone         = "none"
	ColorBlindProtanopia   = "protanopia"
	ColorBlindDeuteranopia = "deuteranopia"
	ColorBlindTritanopia   = "tritanopia"
)

var (
	ErrUnknownColorBlindMode = errors.New("unknown color blind mode")
	ErrUnknownNeed           = errors.New("unknown accessibility need")
)

// ColorBlindModes lists the accepted color blind modes.
var ColorBlindModes = []string{ColorBlindNone, ColorBlindProtanopia, ColorBlindDeuteranopia, ColorBlindTritanopia}

type Settings struct {
	FontSize            int      `json:"fontSize" mapstructure:"fontSize"`
	VoiceSpeed          float64  `json:"voiceSpeed" mapstructure:"voiceSpeed"`
	HighContrast        bool     `json:"highContrast" mapstructure:"highContrast"`
	DarkMode            bool     `json:"darkMode" mapstructure:"darkMode"`
	ReducedMotion       bool     `json:"reducedMotion" mapstructure:"reducedMotion"`
	ColorBlindMode      string   `json:"colorBlindMode" mapstructure:"colorBlindMode"`
	KeyboardShortcuts   bool     `json:"keyboardShortcuts" mapstructure:"keyboardShortcuts"`
	ScreenReader        bool     `json:"screenReader" mapstructure:"screenReader"`
	SelectedNeeds       []string `json:"selectedNeeds" mapstructure:"selectedNeeds"`
	OnboardingCompleted bool     `json:"onboardingCompleted" mapstructure:"onboardingCompleted"`
	Language            string   `json:"language" mapstructure:"language"`
}

func Default() Settings {
	return Settings{
		FontSize:          DefaultFontSize,
		VoiceSpeed:        DefaultVoiceSpeed,
		ColorBlindMode:    ColorBlindNone,
		KeyboardShortcuts: true,
		SelectedNeeds:     []string{},
		Language:          DefaultLanguage,
	}
}

// IncreaseFontSize grows the font size by one step up to MaxFontSize.
func (s *Settings) IncreaseFontSize() int {
	s.FontSize = min(MaxFontSize, s.fontSize()+FontSizeStep)
	return s.FontSize
}

// DecreaseFontSize shrinks the font size by one step down to MinFontSize.
func (s *Settings) DecreaseFontSize() int {
	s.FontSize = max(MinFontSize, s.fontSize()-FontSizeStep)
	return s.FontSize
}

func (s *Settings) IncreaseVoiceSpeed() float64 {
	s.VoiceSpeed = math.Min(MaxVoiceSpeed, roundTenth(s.voiceSpeed()+VoiceSpeedStep))
	return s.VoiceSpeed
}

func (s *Settings) DecreaseVoiceSpeed() float64 {
	s.VoiceSpeed = math.Max(MinVoiceSpeed, roundTenth(s.voiceSpeed()-VoiceSpeedStep))
	return s.VoiceSpeed
}

// SetDarkMode applies value when given, otherwise flips the current state.
func (s *Settings) SetDarkMode(value *bool) bool {
	s.DarkMode = resolveToggle(value, s.DarkMode)
	return s.DarkMode
}

// SetHighContrast applies value when given, otherwise flips the current state.
func (s *Settings) SetHighContrast(value *bool) bool {
	s.HighContrast = resolveToggle(value, s.HighContrast)
	return s.HighContrast
}

// SetColorBlindMode switches the palette. An empty mode means none.
func (s *Settings) SetColorBlindMode(mode string) error {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = ColorBlindNone
	}
	if !slices.Contains(ColorBlindModes, mode) {
		return fmt.Errorf("%w: %q", ErrUnknownColorBlindMode, mode)
	}
	s.ColorBlindMode = mode
	return nil
}

// Need is an onboarding category with the preferences it presets.
type Need struct {
	ID          string
	Name        string
	Description string
	apply       func(*Settings)
}

var Needs = []Need{
	{
		ID:          "visual",
		Name:        "Visual",
		Description: "Assistance with seeing and reading.",
		apply: func(s *Settings) {
			s.FontSize = 20
			s.HighContrast = true
			s.VoiceSpeed = 0.9
		},
	},
	{
		ID:          "auditory",
		Name:        "Auditory",
		Description: "Support for hearing and audio.",
		apply: func(s *Settings) {
			s.FontSize = 18
			s.HighContrast = false
		},
	},
	{
		ID:          "motor",
		Name:        "Motor",
		Description: "Help with physical interaction.",
		apply: func(s *Settings) {
			s.FontSize = 18
			s.ReducedMotion = true
			s.KeyboardShortcuts = true
		},
	},
	{
		ID:          "cognitive",
		Name:        "Cognitive",
		Description: "Aids for focus and processing.",
		apply: func(s *Settings) {
			s.FontSize = 18
			s.ReducedMotion = true
		},
	},
}

func FindNeed(id string) (Need, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, need := range Needs {
		if need.ID == id {
			return need, true
		}
	}
	return Need{}, false
}

// CompleteOnboarding applies the presets of the selected needs in order,
// records them and marks onboarding as done. Later presets win.
func (s *Settings) CompleteOnboarding(needs []string) error {
	selected := make([]string, 0, len(needs))
	for _, id := range needs {
		need, ok := FindNeed(id)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownNeed, id)
		}
		if slices.Contains(selected, need.ID) {
			continue
		}
		need.apply(s)
		selected = append(selected, need.ID)
	}
	s.SelectedNeeds = selected
	s.OnboardingCompleted = true
	return nil
}

// Clamp brings out-of-range values loaded from storage back into bounds.
func (s *Settings) Clamp() {
	s.FontSize = min(MaxFontSize, max(MinFontSize, s.fontSize()))
	s.VoiceSpeed = math.Min(MaxVoiceSpeed, math.Max(MinVoiceSpeed, s.voiceSpeed()))
	if !slices.Contains(ColorBlindModes, s.ColorBlindMode) {
		s.ColorBlindMode = ColorBlindNone
	}
	if s.SelectedNeeds == nil {
		s.SelectedNeeds = []string{}
	}
	if strings.TrimSpace(s.Language) == "" {
		s.Language = DefaultLanguage
	}
}

func (s *Settings) fontSize() int {
	if s.FontSize == 0 {
		return DefaultFontSize
	}
	return s.FontSize
}

func (s *Settings) voiceSpeed() float64 {
	if s.VoiceSpeed == 0 || math.IsNaN(s.VoiceSpeed) {
		return DefaultVoiceSpeed
	}
	return s.VoiceSpeed
}

func resolveToggle(value *bool, current bool) bool {
	if value != nil {
		return *value
	}
	return !current
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
