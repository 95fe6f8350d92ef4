package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

const (
	allPoolsOption = "All pools"
	doneOption     = "Run selected"
)

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
	run    func(prompt promptui.Select) (int, string, error)
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{
		config: cfg,
		run: func(prompt promptui.Select) (int, string, error) {
			return prompt.Run()
		},
	}
}

// SelectPools lets the user pick pools one at a time until they choose to run
func (s *SelectorAdapter) SelectPools(ctx context.Context, names []string, prompt string) ([]string, error) {
	if s.config.NonInteractive {
		return nil, fmt.Errorf("interactive selection not available in non-interactive mode")
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no pools provided for selection")
	}

	chosen := make(map[string]bool)
	var selected []string

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		options, values := s.options(names, chosen, len(selected))

		templates := &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "▸ {{ . | cyan }}",
			Inactive: "  {{ . | faint }}",
			Selected: "✓ {{ . | green }}",
			Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, / to search, Enter to select"),
		}

		index, _, err := s.run(promptui.Select{
			Label:     prompt,
			Items:     options,
			Templates: templates,
			Size:      12,
			Searcher:  createFuzzySearchFunc(options),
		})
		if err != nil {
			return nil, fmt.Errorf("selection cancelled: %w", err)
		}

		switch values[index] {
		case allPoolsOption:
			return append([]string(nil), names...), nil
		case doneOption:
			return selected, nil
		default:
			chosen[values[index]] = true
			selected = append(selected, values[index])
			if len(selected) == len(names) {
				return selected, nil
			}
		}
	}
}

// options builds the display strings and the value each one stands for
func (s *SelectorAdapter) options(names []string, chosen map[string]bool, count int) ([]string, []string) {
	var options, values []string
	if count > 0 {
		options = append(options, color.New(color.FgGreen, color.Bold).Sprintf("%s (%d)", doneOption, count))
		values = append(values, doneOption)
	} else {
		options = append(options, color.New(color.FgWhite, color.Bold).Sprint(allPoolsOption))
		values = append(values, allPoolsOption)
	}
	for _, name := range names {
		if chosen[name] {
			continue
		}
		options = append(options, name)
		values = append(values, name)
	}
	return options, values
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		pattern := fuzzy.Find(input, []string{item})
		return len(pattern) > 0
	}
}

var _ usecase.PoolSelector = (*SelectorAdapter)(nil)
