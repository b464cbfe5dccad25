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

type configContext struct {
	tempDir    string
	configPath string
	found      bool
	cfg        *config.Config
	output     bytes.Buffer
	err        error
}

// SharedConfigContext is reset before each scenario via After hook
var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", "config.yaml")
		return c, nil
	})

	// Reset context after each scenario
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedConfigContext = &configContext{}
		return c, nil
	})

	ctx.Step(`^a config file containing:$`, testCtx.aConfigFileContaining)
	ctx.Step(`^the config file is missing$`, testCtx.theConfigFileIsMissing)
	ctx.Step(`^I run config get "([^"]*)"$`, testCtx.iRunConfigGet)
	ctx.Step(`^I run config set "([^"]*)" to "([^"]*)"$`, testCtx.iRunConfigSet)
	ctx.Step(`^I run config list$`, testCtx.iRunConfigList)
	ctx.Step(`^the config output should be "([^"]*)"$`, testCtx.theConfigOutputShouldBe)
	ctx.Step(`^the config output should contain "([^"]*)"$`, testCtx.theConfigOutputShouldContain)
	ctx.Step(`^the config command should fail with "([^"]*)"$`, testCtx.theConfigCommandShouldFailWith)
	ctx.Step(`^the config file value "([^"]*)" should be "([^"]*)"$`, testCtx.theConfigFileValueShouldBe)
}

func (c *configContext) aConfigFileContaining(doc *godog.DocString) error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(c.configPath, []byte(doc.Content), 0644); err != nil {
		return err
	}
	return c.load()
}

func (c *configContext) theConfigFileIsMissing() error {
	return c.load()
}

// load mirrors what the root command does before running a subcommand
func (c *configContext) load() error {
	cfg, found, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg, c.found = cfg, found
	return nil
}

func (c *configContext) iRunConfigGet(key string) error {
	c.err = cmd.RunConfigGetWithDependencies(c.cfg, c.configPath, key, &c.output)
	return nil
}

func (c *configContext) iRunConfigSet(key, value string) error {
	c.err = cmd.RunConfigSetWithDependencies(c.cfg, c.configPath, key, value, &c.output)
	return nil
}

func (c *configContext) iRunConfigList() error {
	c.err = cmd.RunConfigListWithDependencies(c.cfg, c.configPath, c.found, &c.output)
	return nil
}

func (c *configContext) theConfigOutputShouldBe(expected string) error {
	if c.err != nil {
		return fmt.Errorf("config command failed: %w", c.err)
	}
	if got := strings.TrimSpace(c.output.String()); got != expected {
		return fmt.Errorf("expected output %q, got %q", expected, got)
	}
	return nil
}

func (c *configContext) theConfigOutputShouldContain(expected string) error {
	if c.err != nil {
		return fmt.Errorf("config command failed: %w", c.err)
	}
	if !strings.Contains(c.output.String(), expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, c.output.String())
	}
	return nil
}

func (c *configContext) theConfigCommandShouldFailWith(expected string) error {
	if c.err == nil {
		return fmt.Errorf("expected an error containing %q", expected)
	}
	if !strings.Contains(c.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got %q", expected, c.err.Error())
	}
	return nil
}

func (c *configContext) theConfigFileValueShouldBe(key, expected string) error {
	return configValueAt(c.configPath, key, expected)
}
