// Package display holds the terminal presentation helpers shared by the
// outer CLI and the shell: colored one-line messages and the progress spinner.
package display

import (
	"fmt"
	"io"
	"os"
)

// Output is where messages are written. Tests replace it.
var Output io.Writer = os.Stderr

// ShowError prints an error message in red
func ShowError(msg string) {
	fmt.Fprintln(Output, ErrorColor("Error: "+msg))
}

// ShowWarning prints a warning in yellow
func ShowWarning(msg string) {
	fmt.Fprintln(Output, WarningColor(msg))
}

// ShowInfo prints an informational message
func ShowInfo(msg string) {
	fmt.Fprintln(Output, InfoColor(msg))
}

// ShowSuccess prints a confirmation message in green
func ShowSuccess(msg string) {
	fmt.Fprintln(Output, SuccessColor(msg))
}
