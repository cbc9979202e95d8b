package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrCancelled is returned when a prompt is interrupted.
var ErrCancelled = errors.New("cancelled")

func required(field string) promptui.ValidateFunc {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// ask runs prompt and maps ctrl+c to ErrCancelled.
func ask(prompt promptui.Prompt) (string, error) {
	value, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return "", ErrCancelled
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// askIfEmpty prompts for a field only when no flag supplied it.
func askIfEmpty(value string, label string) (string, error) {
	if value = strings.TrimSpace(value); value != "" {
		return value, nil
	}
	return ask(promptui.Prompt{Label: label, Validate: required(strings.ToLower(label))})
}

func askSecret(label string) (string, error) {
	value, err := (&promptui.Prompt{Label: label, Mask: '*', Validate: required(strings.ToLower(label))}).Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return "", ErrCancelled
	}
	return value, err
}

// confirm asks a yes/no question; "no" is not an error.
func confirm(label string) (bool, error) {
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case errors.Is(err, promptui.ErrInterrupt):
		return false, ErrCancelled
	default:
		return false, err
	}
}

// choose shows a searchable list and returns the index picked.
func choose(label string, items []string) (int, error) {
	selector := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(strings.TrimSpace(input)))
		},
	}
	index, _, err := selector.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return 0, ErrCancelled
	}
	return index, err
}

// readSecret reads one line, as sent by --password-stdin.
func readSecret(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password on standard input")
	}
	return line, nil
}
