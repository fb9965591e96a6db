package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

const maxSymbolLen = 10

// promptSymbol asks for a ticker, offering the configured default.
func promptSymbol(defaultSymbol string) (string, error) {
	var symbol string
	prompt := &survey.Input{
		Message: "Enter a US stock symbol (e.g., AAPL, MSFT, TSLA):",
		Help:    "Type q to quit",
		Default: defaultSymbol,
	}

	err := survey.AskOne(prompt, &symbol, survey.WithValidator(validateSymbol))
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(symbol)), nil
}

func validateSymbol(val interface{}) error {
	str, ok := val.(string)
	if !ok {
		return fmt.Errorf("invalid input")
	}
	str = strings.TrimSpace(str)
	if len(str) == 0 {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(str) > maxSymbolLen {
		return fmt.Errorf("symbol too long (max %d characters)", maxSymbolLen)
	}
	return nil
}

func confirmAnother() (bool, error) {
	again := true
	err := survey.AskOne(&survey.Confirm{
		Message: "Look up another symbol?",
		Default: true,
	}, &again)
	return again, err
}
