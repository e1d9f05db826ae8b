package main

import "charm.land/lipgloss/v2"

// Color roles, one AdaptiveColor per role. main() tells lipgloss which
// variant to pick once, via SetHasDarkBackground, before the program
// starts -- every style built from these colors then resolves itself.
var (
	colorWaitingForUser     = lipgloss.AdaptiveColor{Light: "4", Dark: "75"}
	colorWaitingForApproval = lipgloss.AdaptiveColor{Light: "3", Dark: "214"}
	colorReady              = lipgloss.AdaptiveColor{Light: "8", Dark: "243"}
	colorTextDim            = lipgloss.AdaptiveColor{Light: "8", Dark: "245"}
	colorAccent             = lipgloss.AdaptiveColor{Light: "5", Dark: "212"}
)
