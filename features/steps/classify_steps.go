//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"letitflow-media/cmd"
	"letitflow-media/domain/classification"
	"letitflow-media/infrastructure/config"
	"letitflow-media/infrastructure/filesystem"
	"letitflow-media/infrastructure/httpapi"
	"letitflow-media/infrastructure/lstm"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
)

type classifyContext struct {
	tempDir    string
	cfg        *config.Config
	recognizer classification.Recognizer
	router     *gin.Engine
	clipPath   string
	response   *httptest.ResponseRecorder
	output     bytes.Buffer
	err        error
}

var SharedClassifyContext = &classifyContext{}

func InitializeClassifyScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedClassifyContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		gin.SetMode(gin.TestMode)
		tempDir, err := os.MkdirTemp("", "classify-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir

		cfg := config.Default()
		cfg.Paths.UploadDirectory = filepath.Join(tempDir, "uploads")
		cfg.Model.WeightsFile = filepath.Join(tempDir, "model.safetensors")
		cfg.Model.HiddenSize = 4
		cfg.Model.NumLayers = 1
		cfg.Features.Frames = 20
		// Never depend on a locally installed ffmpeg
		cfg.Extraction.FFmpegPath = filepath.Join(tempDir, "no-ffmpeg")
		testCtx.cfg = cfg
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.recognizer != nil {
			testCtx.recognizer.Close()
		}
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedClassifyContext = &classifyContext{}
		return c, nil
	})

	ctx.Step(`^a model whose output favours "([^"]*)"$`, testCtx.aModelWhoseOutputFavours)
	ctx.Step(`^the model weights file is a PyTorch archive$`, testCtx.theModelWeightsFileIsAPyTorchArchive)
	ctx.Step(`^the classification server is running$`, testCtx.theClassificationServerIsRunning)
	ctx.Step(`^I load the classifier$`, testCtx.iLoadTheClassifier)
	ctx.Step(`^a (\d+) Hz WAV clip of (\d+) milliseconds$`, testCtx.aWAVClip)
	ctx.Step(`^a clip that is not audio$`, testCtx.aClipThatIsNotAudio)
	ctx.Step(`^I upload the clip as "([^"]*)"$`, testCtx.iUploadTheClipAs)
	ctx.Step(`^I post a form without an audio field$`, testCtx.iPostAFormWithoutAnAudioField)
	ctx.Step(`^I classify the clip from the command line$`, testCtx.iClassifyTheClipFromTheCommandLine)
	ctx.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	ctx.Step(`^the response class should be "([^"]*)"$`, testCtx.theResponseClassShouldBe)
	ctx.Step(`^the response error should be "([^"]*)"$`, testCtx.theResponseErrorShouldBe)
	ctx.Step(`^the upload folder should contain "([^"]*)"$`, testCtx.theUploadFolderShouldContain)
	ctx.Step(`^the printed label should be "([^"]*)"$`, testCtx.thePrintedLabelShouldBe)
	ctx.Step(`^loading should fail with "([^"]*)"$`, testCtx.loadingShouldFailWith)
}

// aModelWhoseOutputFavours writes an all-zero LSTM whose only non-zero
// parameter is the output bias of the wanted label
func (c *classifyContext) aModelWhoseOutputFavours(label string) error {
	labels, err := classification.NewLabelMap(c.cfg.Model.Labels)
	if err != nil {
		return err
	}
	favoured := -1
	for i := range labels {
		if string(labels[i]) == label {
			favoured = i
		}
	}
	if favoured < 0 {
		return fmt.Errorf("unknown label %q", label)
	}

	hidden := c.cfg.Model.HiddenSize
	gates := 4 * hidden
	classes := len(labels)

	bias := zeros(classes)
	bias.Data[favoured] = 1
	tensors := map[string]lstm.Tensor{
		"rnn.weight_ih_l0": zeros(gates, c.cfg.Model.InputSize),
		"rnn.weight_hh_l0": zeros(gates, hidden),
		"rnn.bias_ih_l0":   zeros(gates),
		"rnn.bias_hh_l0":   zeros(gates),
		"fc.weight":        zeros(classes, hidden),
		"fc.bias":          bias,
	}

	f, err := os.Create(c.cfg.Model.WeightsFile)
	if err != nil {
		return err
	}
	defer f.Close()
	return lstm.EncodeWeights(f, tensors, map[string]string{"format": "pt"})
}

func zeros(shape ...int) lstm.Tensor {
	t := lstm.Tensor{DType: "F32", Shape: shape}
	t.Data = make([]float64, t.Len())
	return t
}

func (c *classifyContext) theModelWeightsFileIsAPyTorchArchive() error {
	c.cfg.Model.WeightsFile = filepath.Join(c.tempDir, "model.pth")
	return os.WriteFile(c.cfg.Model.WeightsFile, []byte("PK\x03\x04archive/data.pkl"), 0644)
}

func (c *classifyContext) iLoadTheClassifier() error {
	c.recognizer, c.err = cmd.BuildRecognizer(c.cfg, zerolog.Nop())
	return nil
}

func (c *classifyContext) theClassificationServerIsRunning() error {
	if err := c.iLoadTheClassifier(); err != nil {
		return err
	}
	if c.err != nil {
		return fmt.Errorf("failed to load classifier: %w", c.err)
	}
	c.router = httpapi.NewRouter(zerolog.Nop(), c.recognizer, httpapi.RouterConfig{
		UploadDir:   c.cfg.Paths.UploadDirectory,
		CORS:        c.cfg.Server.CORS,
		MaxUploadMB: c.cfg.Server.MaxUploadMB,
	})
	return nil
}

func (c *classifyContext) aWAVClip(sampleRate, millis int) error {
	c.clipPath = filepath.Join(c.tempDir, "clip.wav")
	f, err := os.Create(c.clipPath)
	if err != nil {
		return err
	}
	defer f.Close()

	n := sampleRate * millis / 1000
	data := make([]int, n)
	for i := range data {
		data[i] = int(12000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

func (c *classifyContext) aClipThatIsNotAudio() error {
	c.clipPath = filepath.Join(c.tempDir, "notes.txt")
	return os.WriteFile(c.clipPath, []byte("definitely not a recording"), 0644)
}

func (c *classifyContext) iUploadTheClipAs(filename string) error {
	content, err := os.ReadFile(c.clipPath)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("audio", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(content); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req := httptest.NewRequest(http.MethodPost, "/classify", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.response = httptest.NewRecorder()
	c.router.ServeHTTP(c.response, req)
	return nil
}

func (c *classifyContext) iPostAFormWithoutAnAudioField() error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("name", "clip"); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req := httptest.NewRequest(http.MethodPost, "/classify", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.response = httptest.NewRecorder()
	c.router.ServeHTTP(c.response, req)
	return nil
}

func (c *classifyContext) iClassifyTheClipFromTheCommandLine() error {
	if c.err != nil {
		return fmt.Errorf("failed to load classifier: %w", c.err)
	}
	c.err = cmd.RunClassifyWithDependencies(context.Background(), c.recognizer, c.clipPath, &c.output)
	return nil
}

func (c *classifyContext) theResponseStatusShouldBe(status int) error {
	if c.response.Code != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, c.response.Code, c.response.Body.String())
	}
	return nil
}

func (c *classifyContext) decodeBody() (map[string]string, error) {
	var body map[string]string
	if err := json.Unmarshal(c.response.Body.Bytes(), &body); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	return body, nil
}

func (c *classifyContext) theResponseClassShouldBe(expected string) error {
	body, err := c.decodeBody()
	if err != nil {
		return err
	}
	if body["class"] != expected {
		return fmt.Errorf("expected class %q, got %q", expected, body["class"])
	}
	return nil
}

func (c *classifyContext) theResponseErrorShouldBe(expected string) error {
	body, err := c.decodeBody()
	if err != nil {
		return err
	}
	if body["error"] != expected {
		return fmt.Errorf("expected error %q, got %q", expected, body["error"])
	}
	return nil
}

func (c *classifyContext) theUploadFolderShouldContain(name string) error {
	entries, err := os.ReadDir(c.cfg.Paths.UploadDirectory)
	if err != nil {
		return fmt.Errorf("failed to read upload folder: %w", err)
	}
	var stored []string
	for _, e := range entries {
		if filesystem.ClientFilename(e.Name()) == name {
			return nil
		}
		stored = append(stored, e.Name())
	}
	return fmt.Errorf("expected an upload saved as %s, found %v", name, stored)
}

func (c *classifyContext) thePrintedLabelShouldBe(expected string) error {
	if c.err != nil {
		return fmt.Errorf("classify failed: %w", c.err)
	}
	if got := strings.TrimSpace(c.output.String()); got != expected {
		return fmt.Errorf("expected label %q, got %q", expected, got)
	}
	return nil
}

func (c *classifyContext) loadingShouldFailWith(expected string) error {
	if c.err == nil {
		return fmt.Errorf("expected loading to fail with %q", expected)
	}
	if !strings.Contains(c.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got %q", expected, c.err.Error())
	}
	return nil
}
