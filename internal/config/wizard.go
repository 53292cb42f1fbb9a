package config

import (
	"fmt"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to the given path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to districtbot! Let's configure your deployment.")
	fmt.Println()

	cfg := DefaultConfig()

	phoneIDPrompt := promptui.Prompt{
		Label: "WhatsApp phone number ID",
	}
	phoneID, err := phoneIDPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("phone id prompt: %w", err)
	}
	cfg.WhatsApp.PhoneID = phoneID

	tokenPrompt := promptui.Prompt{
		Label: "WhatsApp access token",
		Mask:  '*',
	}
	token, err := tokenPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("access token prompt: %w", err)
	}
	cfg.WhatsApp.AccessToken = token

	verifyPrompt := promptui.Prompt{
		Label:   "Webhook verify token",
		Default: "districtbot",
	}
	verify, err := verifyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("verify token prompt: %w", err)
	}
	cfg.WhatsApp.VerifyToken = verify

	langPrompt := promptui.Select{
		Label: "Default reply language",
		Items: []string{"sw", "en"},
	}
	_, lang, err := langPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("language selection: %w", err)
	}
	cfg.DefaultLanguage = Language(lang)

	sitePrompt := promptui.Prompt{
		Label:   "Official website URL (empty to disable crawling)",
		Default: "",
	}
	site, err := sitePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("site prompt: %w", err)
	}
	cfg.Site.URL = site

	openaiPrompt := promptui.Prompt{
		Label:   "OpenAI API key (empty to use OPENAI_API_KEY)",
		Mask:    '*',
		Default: "",
	}
	openaiKey, err := openaiPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("openai key prompt: %w", err)
	}
	cfg.OpenAI.APIKey = openaiKey

	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
