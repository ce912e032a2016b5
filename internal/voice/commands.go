// Package voice turns spoken utterances into actions and speaks the outcome.
package voice

import "strings"

const (
	CategoryNavigation     = "navigation"
	CategoryAccessibility  = "accessibility"
	CategoryVoiceAssistant = "voiceAssistant"
	CategoryProfile        = "profile"
	CategorySystem         = "system"
)

// Action names understood by the Dispatcher.
const (
	ActionNone                    = "none"
	ActionNavigateToSection       = "navigateToSection"
	ActionScrollToTop             = "scrollToTop"
	ActionScrollToBottom          = "scrollToBottom"
	ActionScrollDown              = "scrollDown"
	ActionScrollUp                = "scrollUp"
	ActionOpenAccessibilityPanel  = "openAccessibilityPanel"
	ActionCloseAccessibilityPanel = "closeAccessibilityPanel"
	ActionIncreaseTextSize        = "increaseTextSize"
	ActionDecreaseTextSize        = "decreaseTextSize"
	ActionToggleDarkMode          = "toggleDarkMode"
	ActionToggleHighContrast      = "toggleHighContrast"
	ActionSetColorBlindMode       = "setColorBlindMode"
	ActionStartVoiceAssistant     = "startVoiceAssistant"
	ActionStopVoiceAssistant      = "stopVoiceAssistant"
	ActionTranslateText           = "translateText"
	ActionIncreaseVoiceSpeed      = "increaseVoiceSpeed"
	ActionDecreaseVoiceSpeed      = "decreaseVoiceSpeed"
	ActionOpenProfileForm         = "openProfileForm"
	ActionSaveProfile             = "saveProfile"
	ActionMatchJobs               = "matchJobs"
	ActionFilterJobs              = "filterJobs"
	ActionShowHelp                = "showHelp"
	ActionAnnounceLocation        = "announceLocation"
	ActionRepeatLast              = "repeatLast"
	ActionStopSpeaking            = "stopSpeaking"
	ActionDescribePage            = "describePage"
)

// Command is one entry of the pattern table.
type Command struct {
	Category    string
	Patterns    []string
	Action      string
	Params      map[string]any
	Description string
}

// Example is the first pattern of a command, used in help output.
type Example struct {
	Category    string
	Phrase      string
	Description string
}

func sectionParam(name string) map[string]any { return map[string]any{"section": name} }
func valueParam(v any) map[string]any { return map[string]any{"value": v} }
func modeParam(m string) map[string]any { return map[string]any{"mode": m} }
func filterParam(f string) map[string]any { return map[string]any{"filter": f} }

// commands is matched in order; the first hit wins.
var commands = []Command{
	{CategoryNavigation, []string{"go to features", "show features", "features section", "navigate to features"}, ActionNavigateToSection, sectionParam("features"), "Navigate to features section"},
	{CategoryNavigation, []string{"go to voice", "voice assistant", "show voice", "navigate to voice"}, ActionNavigateToSection, sectionParam("voice"), "Navigate to voice assistant section"},
	{CategoryNavigation, []string{"go to jobs", "show jobs", "job matching", "find jobs", "navigate to jobs"}, ActionNavigateToSection, sectionParam("jobs"), "Navigate to job matching section"},
	{CategoryNavigation, []string{"go to accessibility", "accessibility settings", "show accessibility"}, ActionNavigateToSection, sectionParam("accessibility"), "Navigate to accessibility section"},
	{CategoryNavigation, []string{"go to integration", "integrations", "show integrations"}, ActionNavigateToSection, sectionParam("integration"), "Navigate to integrations section"},
	{CategoryNavigation, []string{"go to top", "scroll to top", "top of page", "go home"}, ActionScrollToTop, nil, "Scroll to top of page"},
	{CategoryNavigation, []string{"go to bottom", "scroll to bottom", "bottom of page"}, ActionScrollToBottom, nil, "Scroll to bottom of page"},
	{CategoryNavigation, []string{"scroll down", "move down", "page down"}, ActionScrollDown, nil, "Scroll down the page"},
	{CategoryNavigation, []string{"scroll up", "move up", "page up"}, ActionScrollUp, nil, "Scroll up the page"},

	{CategoryAccessibility, []string{"open settings", "show settings", "accessibility settings", "open accessibility"}, ActionOpenAccessibilityPanel, nil, "Open accessibility settings panel"},
	{CategoryAccessibility, []string{"close settings", "hide settings", "close accessibility"}, ActionCloseAccessibilityPanel, nil, "Close accessibility settings panel"},
	{CategoryAccessibility, []string{"increase text", "bigger text", "increase font", "larger text", "make text bigger"}, ActionIncreaseTextSize, nil, "Increase text size"},
	{CategoryAccessibility, []string{"decrease text", "smaller text", "decrease font", "make text smaller"}, ActionDecreaseTextSize, nil, "Decrease text size"},
	{CategoryAccessibility, []string{"enable dark mode", "dark mode on", "turn on dark mode", "activate dark mode"}, ActionToggleDarkMode, valueParam(true), "Enable dark mode"},
	{CategoryAccessibility, []string{"disable dark mode", "dark mode off", "turn off dark mode", "light mode"}, ActionToggleDarkMode, valueParam(false), "Disable dark mode"},
	{CategoryAccessibility, []string{"high contrast", "enable high contrast", "high contrast on"}, ActionToggleHighContrast, valueParam(true), "Enable high contrast mode"},
	{CategoryAccessibility, []string{"normal contrast", "disable high contrast"}, ActionToggleHighContrast, valueParam(false), "Disable high contrast mode"},
	{CategoryAccessibility, []string{"protanopia", "protanopia mode", "red blind mode"}, ActionSetColorBlindMode, modeParam("protanopia"), "Switch to protanopia color blind mode"},
	{CategoryAccessibility, []string{"deuteranopia", "deuteranopia mode", "green blind mode"}, ActionSetColorBlindMode, modeParam("deuteranopia"), "Switch to deuteranopia color blind mode"},
	{CategoryAccessibility, []string{"tritanopia", "tritanopia mode", "blue blind mode"}, ActionSetColorBlindMode, modeParam("tritanopia"), "Switch to tritanopia color blind mode"},
	{CategoryAccessibility, []string{"normal vision", "normal mode", "no color blind"}, ActionSetColorBlindMode, modeParam("none"), "Switch to normal vision mode"},

	{CategoryVoiceAssistant, []string{"start listening", "start voice", "activate microphone", "begin listening"}, ActionStartVoiceAssistant, nil, "Start voice assistant listening"},
	{CategoryVoiceAssistant, []string{"stop listening", "stop voice", "deactivate microphone"}, ActionStopVoiceAssistant, nil, "Stop voice assistant listening"},
	{CategoryVoiceAssistant, []string{"translate", "translate text", "translate this"}, ActionTranslateText, nil, "Translate current text"},
	{CategoryVoiceAssistant, []string{"speak faster", "increase speed", "faster"}, ActionIncreaseVoiceSpeed, nil, "Increase voice speed"},
	{CategoryVoiceAssistant, []string{"speak slower", "decrease speed", "slower"}, ActionDecreaseVoiceSpeed, nil, "Decrease voice speed"},

	{CategoryProfile, []string{"create profile", "new profile", "make profile", "start profile"}, ActionOpenProfileForm, nil, "Open profile creation form"},
	{CategoryProfile, []string{"save profile", "submit profile"}, ActionSaveProfile, nil, "Save current profile"},
	{CategoryProfile, []string{"find jobs", "search jobs", "match jobs", "show jobs"}, ActionMatchJobs, nil, "Find matching jobs based on profile"},
	{CategoryProfile, []string{"show all jobs", "all jobs", "view all"}, ActionFilterJobs, filterParam("all"), "Show all jobs"},
	{CategoryProfile, []string{"remote jobs", "show remote", "remote only"}, ActionFilterJobs, filterParam("remote"), "Show remote jobs only"},
	{CategoryProfile, []string{"accessible jobs", "accessible workplaces"}, ActionFilterJobs, filterParam("accessible"), "Show accessible workplaces"},

	{CategorySystem, []string{"help", "help me", "what can you do", "commands", "show commands"}, ActionShowHelp, nil, "Show available voice commands"},
	{CategorySystem, []string{"where am i", "current location", "what section"}, ActionAnnounceLocation, nil, "Announce current page section"},
	{CategorySystem, []string{"repeat", "say again", "repeat that"}, ActionRepeatLast, nil, "Repeat last announcement"},
	{CategorySystem, []string{"stop talking", "be quiet", "silence"}, ActionStopSpeaking, nil, "Stop current speech"},
	{CategorySystem, []string{"read page", "describe page", "what is on this page"}, ActionDescribePage, nil, "Describe current page content"},
}

// Normalize lower-cases and trims an utterance.
func Normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// Match returns the first command with a pattern that contains the
// normalized input or is contained in it. Empty input never matches.
func Match(input string) (Command, bool) {
	normalized := Normalize(input)
	if normalized == "" {
		return Command{}, false
	}
	for _, cmd := range commands {
		for _, pattern := range cmd.Patterns {
			if strings.Contains(normalized, pattern) || strings.Contains(pattern, normalized) {
				return cmd.clone(), true
			}
		}
	}
	return Command{}, false
}

// Commands lists one example phrase per command in table order.
func Commands() []Example {
	out := make([]Example, 0, len(commands))
	for _, cmd := range commands {
		out = append(out, Example{Category: cmd.Category, Phrase: cmd.Patterns[0], Description: cmd.Description})
	}
	return out
}

func (c Command) clone() Command {
	params := make(map[string]any, len(c.Params))
	for k, v := range c.Params {
		params[k] = v
	}
	c.Params = params
	c.Patterns = append([]string(nil), c.Patterns...)
	return c
}
