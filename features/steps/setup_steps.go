//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"letitflow-media/cmd"
	"letitflow-media/infrastructure/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	originalContent string
	output          bytes.Buffer
	err             error
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter for testing
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	inputIndex       int
	confirmIndex     int
}

func NewMockPrompter(inputs []string, confirms []bool) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		if defaultValue != "" {
			return defaultValue, nil
		}
		return "", fmt.Errorf("no more input responses available for message: %s", message)
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedSetupContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", "config.yaml")
		testCtx.originalContent = ""
		testCtx.output.Reset()
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedSetupContext = &setupContext{}
		return c, nil
	})

	ctx.Step(`^no config file exists$`, testCtx.noConfigFileExists)
	ctx.Step(`^a config file already exists$`, testCtx.aConfigFileAlreadyExists)
	ctx.Step(`^I run the setup command with inputs:$`, testCtx.iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command accepting every default$`, testCtx.iRunTheSetupCommandAcceptingEveryDefault)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, testCtx.iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)" and inputs:$`, testCtx.iRunTheSetupCommandWithConfirmationAndInputs)
	ctx.Step(`^a config file should exist$`, testCtx.aConfigFileShouldExist)
	ctx.Step(`^no config file should exist$`, testCtx.noConfigFileShouldExist)
	ctx.Step(`^the saved config value "([^"]*)" should be "([^"]*)"$`, testCtx.theSavedConfigValueShouldBe)
	ctx.Step(`^the setup should fail with "([^"]*)"$`, testCtx.theSetupShouldFailWith)
	ctx.Step(`^the setup output should contain "([^"]*)"$`, testCtx.theSetupOutputShouldContain)
	ctx.Step(`^the original config should be unchanged$`, testCtx.theOriginalConfigShouldBeUnchanged)
}

func (s *setupContext) noConfigFileExists() error {
	if _, err := os.Stat(s.configPath); err == nil {
		return os.Remove(s.configPath)
	}
	return nil
}

func (s *setupContext) aConfigFileAlreadyExists() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}

	content := `paths:
  input_directory: "LetItFlow-RAW-Lina"
  output_directory: "Lina"
extraction:
  engine: "ffmpeg"
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

func (s *setupContext) run(prompter cmd.Prompter) {
	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath, &s.output)
}

func (s *setupContext) iRunTheSetupCommandWithInputs(table *godog.Table) error {
	inputs, confirms := parseInputTable(table)
	s.run(NewMockPrompter(inputs, confirms))
	return nil
}

func (s *setupContext) iRunTheSetupCommandAcceptingEveryDefault() error {
	s.run(NewMockPrompter(nil, nil))
	return nil
}

func (s *setupContext) iRunTheSetupCommandWithConfirmation(confirmation string) error {
	confirm := strings.ToLower(confirmation) == "y"
	s.run(NewMockPrompter(nil, []bool{confirm}))
	return nil
}

func (s *setupContext) iRunTheSetupCommandWithConfirmationAndInputs(confirmation string, table *godog.Table) error {
	confirm := strings.ToLower(confirmation) == "y"
	inputs, confirms := parseInputTable(table)

	// Prepend the overwrite confirmation
	allConfirms := append([]bool{confirm}, confirms...)
	s.run(NewMockPrompter(inputs, allConfirms))
	return nil
}

// parseInputTable splits a prompt/value table into text answers and yes/no
// answers. Prompts starting with "allow" are yes/no questions.
func parseInputTable(table *godog.Table) ([]string, []bool) {
	var inputs []string
	var confirms []bool

	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		prompt := strings.ToLower(row.Cells[0].Value)
		value := row.Cells[1].Value

		if strings.HasPrefix(prompt, "allow") {
			confirms = append(confirms, strings.ToLower(value) == "y")
		} else {
			inputs = append(inputs, value)
		}
	}

	return inputs, confirms
}

func (s *setupContext) aConfigFileShouldExist() error {
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", s.configPath)
	}
	return nil
}

func (s *setupContext) noConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); err == nil {
		return fmt.Errorf("expected no config file at %s", s.configPath)
	}
	return nil
}

func (s *setupContext) theSavedConfigValueShouldBe(key, expected string) error {
	return configValueAt(s.configPath, key, expected)
}

func (s *setupContext) theSetupShouldFailWith(expected string) error {
	if s.err == nil {
		return fmt.Errorf("expected setup to fail with %q", expected)
	}
	if !strings.Contains(s.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got %q", expected, s.err.Error())
	}
	return nil
}

func (s *setupContext) theSetupOutputShouldContain(expected string) error {
	if !strings.Contains(s.output.String(), expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, s.output.String())
	}
	return nil
}

func (s *setupContext) theOriginalConfigShouldBeUnchanged() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if string(data) != s.originalContent {
		return fmt.Errorf("config was modified when it should have been unchanged")
	}
	return nil
}

// configValueAt loads the config file at path and compares one dotted key
func configValueAt(path, key, expected string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	got, err := config.NewConfigManager(cfg, path).Get(key)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("expected %s %q, got %q", key, expected, got)
	}
	return nil
}
