package voice

import (
	"fmt"
	"strings"
)

// Spoken texts.
const (
	MsgActivated      = "Voice control activated. Say help to hear commands."
	MsgStopped        = "Voice control stopped."
	MsgAlreadyActive  = "Voice control is already active."
	MsgNotUnderstood  = "Sorry, I didn't understand that. Say help to hear available commands."
	MsgProcessingFail = "Sorry, I had trouble processing that. Could you try again?"
	MsgTranslate      = "Translation is not available yet."
	MsgMicUnavailable = "Microphone access is not available. Voice control has been disabled."
	MsgStartFailed    = "Could not start voice control. Please try again."

	MsgWelcome = "Welcome to NEXUS, your adaptive workplace assistant. Voice control is active. Say help to hear available commands."

	pageDescription = "You are on the NEXUS homepage. " +
		"This page contains multiple sections: " +
		"Features section showcasing accessibility capabilities. " +
		"Voice Assistant section for speech recognition and translation. " +
		"Job Matching section powered by AI. " +
		"Accessibility settings for customizing your experience. " +
		"And Integrations section for connecting workplace tools. " +
		"Use voice commands to navigate between sections."
)

var navigationAnnouncements = map[string]string{
	"features":      "Navigating to Features section. Here you can explore powerful accessibility features.",
	"voice":         "Navigating to Voice Assistant section. You can use voice commands and real-time translation here.",
	"jobs":          "Navigating to Job Matching section. Find jobs tailored to your skills and accessibility needs.",
	"accessibility": "Navigating to Accessibility section. Customize your experience with various accessibility options.",
	"integration":   "Navigating to Integrations section. Connect with workplace tools like Slack and Teams.",
}

var helpExamples = []string{
	"Say go to features to navigate to features section.",
	"Say create profile to start creating your profile.",
	"Say enable dark mode to switch to dark theme.",
	"Say start listening to activate voice assistant.",
	"Say help anytime to hear these commands again.",
}

func announceNavigation(section string) string {
	if text, ok := navigationAnnouncements[section]; ok {
		return text
	}
	return fmt.Sprintf("Navigating to %s section", section)
}

func announceError(message string) string {
	return "Error: " + message
}

func announceLocation(section string) string {
	if strings.TrimSpace(section) == "" {
		section = "top of page"
	}
	return fmt.Sprintf("You are currently in the %s section.", section)
}

func announceHelp() string {
	return "Available voice commands: " + strings.Join(helpExamples, " ")
}

func announceTextSize(increased bool, size int) string {
	if increased {
		return fmt.Sprintf("Text size increased to %dpx.", size)
	}
	return fmt.Sprintf("Text size decreased to %dpx.", size)
}

func announceVoiceSpeed(speed float64) string {
	return fmt.Sprintf("Voice speed set to %.1f times the normal rate.", speed)
}

func announceDarkMode(enabled bool) string {
	if enabled {
		return "Dark mode enabled. Interface is now using the dark theme."
	}
	return "Dark mode disabled. Interface is now using the light theme."
}

func announceHighContrast(enabled bool) string {
	if enabled {
		return "High contrast mode enabled."
	}
	return "High contrast mode disabled."
}

func announceColorBlindMode(mode string) string {
	if mode == "none" {
		return "Color blind adjustments disabled. Normal vision mode active."
	}
	return fmt.Sprintf("%s color blind mode enabled.", mode)
}

func announceFilter(filter string) string {
	switch filter {
	case "all":
		return "Showing all available jobs."
	case "remote":
		return "Showing remote friendly jobs."
	case "accessible":
		return "Showing jobs with accessible workplaces."
	default:
		return "Jobs filter applied."
	}
}

// confirmations are spoken for pattern matches whose handler has nothing
// more specific to say.
var confirmations = map[string]string{
	ActionOpenAccessibilityPanel:  "Accessibility settings panel opened. You can now adjust text size, color modes, and more.",
	ActionCloseAccessibilityPanel: "Accessibility settings panel closed.",
	ActionOpenProfileForm:         "Profile form opened. Please fill in your details.",
	ActionSaveProfile:             "Saving your profile.",
	ActionMatchJobs:               "Looking for the best jobs that match your profile.",
	ActionScrollToTop:             "Scrolled to the top of the page.",
	ActionScrollToBottom:          "Scrolled to the bottom of the page.",
	ActionScrollDown:              "Scrolling down.",
	ActionScrollUp:                "Scrolling up.",
}
