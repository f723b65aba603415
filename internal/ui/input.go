// Package ui provides interactive input components.
package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Prompt displays a prompt and reads user input.
//
// Parameters:
//   - message: The prompt message to display
//
// Returns:
//   - string: The user's input
//   - error: Any error that occurred
func Prompt(message string) (string, error) {
	fmt.Printf("%s ", InfoStyle.Render(message))

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(input), nil
}

// PromptConfirm displays a yes/no confirmation prompt.
//
// Parameters:
//   - message: The prompt message to display
//   - defaultYes: Whether the default is yes (true) or no (false)
//
// Returns:
//   - bool: True if user confirmed, false otherwise
//   - error: Any error that occurred
func PromptConfirm(message string, defaultYes bool) (bool, error) {
	suffix := "[y/N]"
	if defaultYes {
		suffix = "[Y/n]"
	}

	input, err := Prompt(fmt.Sprintf("%s %s", message, suffix))
	if err != nil {
		return false, err
	}

	input = strings.ToLower(strings.TrimSpace(input))

	if input == "" {
		return defaultYes, nil
	}

	return input == "y" || input == "yes", nil
}

// Confirm prompts the user for a yes/no confirmation, defaulting to no.
// Errors reading stdin count as a decline.
//
// Parameters:
//   - message: The prompt message to display
//
// Returns:
//   - bool: True if user confirmed, false otherwise
func Confirm(message string) bool {
	result, err := PromptConfirm(message, false)
	if err != nil {
		return false
	}
	return result
}
