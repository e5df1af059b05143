package cli

import (
	"bufio"
	"fmt"
	"strings"
)

// promptOptional reads a line from the reader, returning the default value
// when the user just presses enter.
func promptOptional(reader *bufio.Reader, prompt, defaultValue string) (string, error) {
	fmt.Print(prompt)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue, nil
	}
	return input, nil
}

// promptYesNo reads a yes/no answer, defaulting to no.
func promptYesNo(reader *bufio.Reader, prompt string) (bool, error) {
	fmt.Print(prompt)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes", nil
}
