// Package ui provides the checklist renderer for doctor output.
package ui

import (
	"fmt"
)

// Check is one doctor check result.
type Check struct {
	// Name describes what was checked.
	Name string

	// Ok reports whether the check passed.
	Ok bool

	// Warn marks a non-fatal finding; ignored when Ok is true.
	Warn bool

	// Detail explains the finding. Shown dimmed under the check line.
	Detail string
}

// PrintChecklist prints doctor checks as a ✓/⚠/✗ list and returns the
// number of failed (non-warning) checks.
//
// Parameters:
//   - title: Section heading
//   - checks: The checks to render, in run order
//
// Returns:
//   - int: How many checks failed
func PrintChecklist(title string, checks []Check) int {
	if !quietMode {
		fmt.Println(TitleStyle.Render(title))
	}

	failed := 0
	for _, c := range checks {
		switch {
		case c.Ok:
			if !quietMode {
				fmt.Println(SuccessStyle.Render("  ✓ ") + InfoStyle.Render(c.Name))
			}
		case c.Warn:
			if !quietMode {
				fmt.Println(WarningStyle.Render("  ⚠ ") + InfoStyle.Render(c.Name))
			}
		default:
			failed++
			if !quietMode {
				fmt.Println(ErrorStyle.Render("  ✗ ") + InfoStyle.Render(c.Name))
			}
		}
		if c.Detail != "" && !quietMode {
			fmt.Println(DimStyle.Render("      " + c.Detail))
		}
	}
	return failed
}
