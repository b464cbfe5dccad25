//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"letitflow-media/application/extraction"
	"letitflow-media/cmd"
	"letitflow-media/domain/media"
	"letitflow-media/infrastructure/filesystem"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"
)

// fakeExtractor writes a placeholder WAV for every request instead of running ffmpeg
type fakeExtractor struct {
	calls       []string
	failing     map[string]bool
	toolMissing bool
}

func (f *fakeExtractor) Extract(ctx context.Context, req *media.ExtractionRequest, outputPath string) (media.ToolRun, error) {
	f.calls = append(f.calls, filepath.Base(req.SourcePath))
	run := media.ToolRun{Command: "ffmpeg", Args: []string{"-i", req.SourcePath, outputPath}}

	if f.toolMissing {
		run.ExitCode = -1
		return run, fmt.Errorf("%w: ffmpeg", media.ErrToolNotFound)
	}
	if f.failing[filepath.Base(req.SourcePath)] {
		run.ExitCode = 1
		run.Stderr = "Invalid data found when processing input"
		return run, &media.ToolError{Run: run, Err: errors.New("exit status 1")}
	}
	if err := os.WriteFile(outputPath, []byte("RIFF"+req.SourcePath), 0644); err != nil {
		return run, err
	}
	return run, nil
}

type extractContext struct {
	tempDir   string
	inputDir  string
	outputDir string
	extension string
	heldLock  func() error
	extractor *fakeExtractor
	report    *media.BatchReport
	result    *media.FileResult
	output    bytes.Buffer
	err       error
}

var SharedExtractContext = &extractContext{}

func InitializeExtractScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedExtractContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "extract-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.inputDir = filepath.Join(tempDir, "mov")
		testCtx.outputDir = filepath.Join(tempDir, "wav")
		testCtx.extension = media.DefaultExtension
		testCtx.extractor = &fakeExtractor{failing: make(map[string]bool)}
		return c, os.MkdirAll(testCtx.inputDir, 0755)
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.heldLock != nil {
			testCtx.heldLock()
		}
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedExtractContext = &extractContext{}
		return c, nil
	})

	ctx.Step(`^the input folder contains files:$`, testCtx.theInputFolderContainsFiles)
	ctx.Step(`^the input folder contains a subfolder "([^"]*)"$`, testCtx.theInputFolderContainsASubfolder)
	ctx.Step(`^the input folder does not exist$`, testCtx.theInputFolderDoesNotExist)
	ctx.Step(`^the extension is "([^"]*)"$`, testCtx.theExtensionIs)
	ctx.Step(`^another extraction is writing to the output folder$`, testCtx.anotherExtractionIsWritingToTheOutputFolder)
	ctx.Step(`^the transcoder fails for "([^"]*)"$`, testCtx.theTranscoderFailsFor)
	ctx.Step(`^the transcoder is not installed$`, testCtx.theTranscoderIsNotInstalled)
	ctx.Step(`^I run the batch extraction$`, testCtx.iRunTheBatchExtraction)
	ctx.Step(`^I extract the single file "([^"]*)"$`, testCtx.iExtractTheSingleFile)
	ctx.Step(`^I extract the single file "([^"]*)" to "([^"]*)"$`, testCtx.iExtractTheSingleFileTo)
	ctx.Step(`^the transcoder should have been called (\d+) times?$`, testCtx.theTranscoderShouldHaveBeenCalledTimes)
	ctx.Step(`^the output folder should contain "([^"]*)"$`, testCtx.theOutputFolderShouldContain)
	ctx.Step(`^the output folder should not contain "([^"]*)"$`, testCtx.theOutputFolderShouldNotContain)
	ctx.Step(`^the report should show (\d+) extracted, (\d+) failed and (\d+) skipped$`, testCtx.theReportShouldShow)
	ctx.Step(`^the report should list (\d+) tool-missing files?$`, testCtx.theReportShouldListToolMissingFiles)
	ctx.Step(`^the extraction should fail with "([^"]*)"$`, testCtx.theExtractionShouldFailWith)
	ctx.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	ctx.Step(`^the extraction output should contain "([^"]*)"$`, testCtx.theExtractionOutputShouldContain)
}

func (e *extractContext) service() *extraction.Service {
	return extraction.NewService(
		zerolog.Nop(),
		e.extractor,
		filesystem.NewLister(),
		filesystem.NewChecker(),
		extraction.WithExtension(e.extension),
		extraction.WithLocker(filesystem.NewLocker()),
	)
}

func (e *extractContext) theInputFolderContainsFiles(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		path := filepath.Join(e.inputDir, row.Cells[0].Value)
		if err := os.WriteFile(path, []byte("video"), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (e *extractContext) theInputFolderContainsASubfolder(name string) error {
	return os.MkdirAll(filepath.Join(e.inputDir, name), 0755)
}

func (e *extractContext) theInputFolderDoesNotExist() error {
	return os.RemoveAll(e.inputDir)
}

func (e *extractContext) theExtensionIs(ext string) error {
	e.extension = ext
	return nil
}

func (e *extractContext) anotherExtractionIsWritingToTheOutputFolder() error {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return err
	}
	unlock, err := filesystem.NewLocker().Lock(e.outputDir)
	if err != nil {
		return err
	}
	e.heldLock = unlock
	return nil
}

func (e *extractContext) theTranscoderFailsFor(name string) error {
	e.extractor.failing[name] = true
	return nil
}

func (e *extractContext) theTranscoderIsNotInstalled() error {
	e.extractor.toolMissing = true
	return nil
}

func (e *extractContext) iRunTheBatchExtraction() error {
	e.report, e.err = cmd.RunExtractAudioWithDependencies(
		context.Background(), e.service(), e.extractor, e.inputDir, e.outputDir, &e.output,
	)
	return nil
}

func (e *extractContext) iExtractTheSingleFile(name string) error {
	return e.extractSingle(name, "")
}

func (e *extractContext) iExtractTheSingleFileTo(name, output string) error {
	return e.extractSingle(name, filepath.Join(e.tempDir, output))
}

func (e *extractContext) extractSingle(name, output string) error {
	// Relative default output lands in the scenario's temp dir
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := os.Chdir(e.tempDir); err != nil {
		return err
	}
	defer os.Chdir(wd)

	e.result, e.err = cmd.RunExtractFileWithDependencies(
		context.Background(), e.service(), e.extractor, filepath.Join(e.inputDir, name), output, &e.output,
	)
	return nil
}

func (e *extractContext) theTranscoderShouldHaveBeenCalledTimes(n int) error {
	if len(e.extractor.calls) != n {
		return fmt.Errorf("expected %d transcoder calls, got %d: %v", n, len(e.extractor.calls), e.extractor.calls)
	}
	return nil
}

func (e *extractContext) theOutputFolderShouldContain(name string) error {
	if _, err := os.Stat(filepath.Join(e.outputDir, name)); err != nil {
		return fmt.Errorf("expected %s in output folder: %w", name, err)
	}
	return nil
}

func (e *extractContext) theOutputFolderShouldNotContain(name string) error {
	if _, err := os.Stat(filepath.Join(e.outputDir, name)); err == nil {
		return fmt.Errorf("did not expect %s in output folder", name)
	}
	return nil
}

func (e *extractContext) theReportShouldShow(extracted, failed, skipped int) error {
	if e.err != nil {
		return fmt.Errorf("batch extraction failed: %w", e.err)
	}
	if got := e.report.Succeeded(); got != extracted {
		return fmt.Errorf("expected %d extracted, got %d", extracted, got)
	}
	if got := e.report.Failed(); got != failed {
		return fmt.Errorf("expected %d failed, got %d", failed, got)
	}
	if got := len(e.report.Skipped); got != skipped {
		return fmt.Errorf("expected %d skipped, got %d: %v", skipped, got, e.report.Skipped)
	}
	return nil
}

func (e *extractContext) theReportShouldListToolMissingFiles(n int) error {
	if e.err != nil {
		return fmt.Errorf("batch extraction failed: %w", e.err)
	}
	if got := e.report.ToolMissing(); got != n {
		return fmt.Errorf("expected %d tool-missing files, got %d", n, got)
	}
	return nil
}

func (e *extractContext) theExtractionShouldFailWith(expected string) error {
	if e.err == nil {
		return fmt.Errorf("expected extraction to fail with %q", expected)
	}
	if !strings.Contains(e.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got %q", expected, e.err.Error())
	}
	return nil
}

func (e *extractContext) theFileShouldExist(rel string) error {
	if e.err != nil {
		return fmt.Errorf("extraction failed: %w", e.err)
	}
	if _, err := os.Stat(filepath.Join(e.tempDir, rel)); err != nil {
		return fmt.Errorf("expected %s to exist: %w", rel, err)
	}
	return nil
}

func (e *extractContext) theExtractionOutputShouldContain(expected string) error {
	if !strings.Contains(e.output.String(), expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, e.output.String())
	}
	return nil
}
