package display

import "github.com/fatih/color"

// General purpose colors
var (
	InfoColor    = color.New(color.FgCyan).SprintFunc()
	SuccessColor = color.New(color.FgGreen).SprintFunc()
	WarningColor = color.New(color.FgYellow).SprintFunc()
	ErrorColor   = color.New(color.FgRed).SprintFunc()
	DetailColor  = color.New(color.FgHiBlack).SprintFunc()
)

// Shell colors
var (
	PromptColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	TitleColor  = color.New(color.FgYellow).SprintFunc()
	HeaderColor = color.New(color.FgGreen, color.Bold).SprintFunc()
)

// DisableColors turns off escape sequences, used for scripts and only-result mode
func DisableColors() {
	color.NoColor = true
}
