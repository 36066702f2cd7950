package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/pulselab/cryptopulse/config"
)

// UserSelections holds the interactive-mode analysis parameters.
type UserSelections struct {
	Ticker    string
	HoursBack int
	MaxItems  int
	Correlate bool
	Save      bool
}

var tickerPattern = regexp.MustCompile(`^\$?[A-Z0-9.-]+$`)

// PromptForSelections walks the user through the analysis parameters.
func PromptForSelections(cfg *config.Config) (UserSelections, error) {
	sel := UserSelections{
		HoursBack: cfg.HoursBack,
		MaxItems:  cfg.MaxItems,
	}

	ticker, err := PromptForTicker()
	if err != nil {
		return sel, err
	}
	sel.Ticker = ticker

	if sel.HoursBack, err = promptForInt(
		"How many hours back to search:", cfg.HoursBack, 1, 168); err != nil {
		return sel, err
	}
	if sel.MaxItems, err = promptForInt(
		"Maximum posts to fetch (10-100):", cfg.MaxItems, 10, 100); err != nil {
		return sel, err
	}

	correlatePrompt := &survey.Confirm{
		Message: "Correlate sentiment with recent price changes?",
		Default: false,
	}
	if err := survey.AskOne(correlatePrompt, &sel.Correlate); err != nil {
		return sel, err
	}

	savePrompt := &survey.Confirm{
		Message: "Save results as JSON?",
		Default: false,
	}
	if err := survey.AskOne(savePrompt, &sel.Save); err != nil {
		return sel, err
	}

	return sel, nil
}

// PromptForTicker prompts the user to enter a crypto ticker symbol
func PromptForTicker() (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: "Enter the crypto ticker (e.g., $BTC, $ETH, $SOL):",
		Help:    "A cashtag or plain symbol of the asset to analyze",
	}

	err := survey.AskOne(prompt, &ticker, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(strings.ToUpper(val.(string)))
		if len(str) == 0 {
			return fmt.Errorf("ticker cannot be empty")
		}
		if len(str) > 11 {
			return fmt.Errorf("ticker too long (max 10 characters)")
		}
		if !tickerPattern.MatchString(str) {
			return fmt.Errorf("invalid ticker format (use letters, numbers, dots, and hyphens only)")
		}
		return nil
	}))

	if err != nil {
		return "", err
	}

	return strings.TrimSpace(strings.ToUpper(ticker)), nil
}

func promptForInt(message string, def, min, max int) (int, error) {
	var answer string
	prompt := &survey.Input{
		Message: message,
		Default: strconv.Itoa(def),
	}

	err := survey.AskOne(prompt, &answer, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(val.(string))
		if str == "" {
			return nil
		}
		n, err := strconv.Atoi(str)
		if err != nil {
			return fmt.Errorf("enter a whole number")
		}
		if n < min || n > max {
			return fmt.Errorf("value must be between %d and %d", min, max)
		}
		return nil
	}))
	if err != nil {
		return 0, err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def, nil
	}
	return strconv.Atoi(answer)
}

// PromptForConfirmation prompts the user to confirm their selections
func PromptForConfirmation(sel UserSelections) (bool, error) {
	summary := fmt.Sprintf(`
Analysis Configuration Summary:
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

📊 Ticker:            %s
🕐 Hours Back:        %d
📦 Max Posts:         %d
📉 Price Correlation: %t
💾 Save Results:      %t

━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
`,
		sel.Ticker,
		sel.HoursBack,
		sel.MaxItems,
		sel.Correlate,
		sel.Save,
	)

	fmt.Println(summary)

	var confirmed bool
	prompt := &survey.Confirm{
		Message: "Proceed with this analysis configuration?",
		Default: true,
	}

	err := survey.AskOne(prompt, &confirmed)
	return confirmed, err
}

// PromptForRestartOrExit prompts user when analysis completes
func PromptForRestartOrExit() (bool, error) {
	var choice string
	prompt := &survey.Select{
		Message: "Analysis completed! What would you like to do next?",
		Options: []string{
			"Start a new analysis",
			"Exit CryptoPulse",
		},
		Default: "Exit CryptoPulse",
	}

	err := survey.AskOne(prompt, &choice)
	if err != nil {
		return false, err
	}

	return choice == "Start a new analysis", nil
}
