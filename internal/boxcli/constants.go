// Package boxcli wires the box-add pipeline up as a cobra command tree.
package boxcli

// Default values for CLI flags and formatted output.
const (
	// TabWidth is the width of tabs in tabwriter-formatted output.
	TabWidth = 2
)
