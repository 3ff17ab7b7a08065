package source

import (
	"context"
	"fmt"
	"regexp"

	"golang.org/x/time/rate"
)

// reBoxNoise matches lines made only of rule characters that tesseract
// emits for table borders and underlines
var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-=|]{3,}\s*$`)

// Tesseract recognizes text in images with the tesseract CLI
type Tesseract struct {
	Binary      string
	Lang        string
	TessdataDir string

	runner  Runner
	limiter *rate.Limiter // nil means unlimited
}

// NewTesseract creates an OCR engine. ratePerSecond <= 0 disables throttling.
func NewTesseract(binary, lang string, ratePerSecond float64, runner Runner) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	if lang == "" {
		lang = "eng"
	}

	t := &Tesseract{
		Binary: binary,
		Lang:   lang,
		runner: runner,
	}
	if ratePerSecond > 0 {
		burst := int(ratePerSecond)
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	return t
}

// Recognize runs `tesseract <file> stdout -l <lang>` and returns the text.
func (t *Tesseract) Recognize(ctx context.Context, path string) (string, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("ocr rate limit: %w", err)
		}
	}

	args := []string{path, "stdout", "-l", t.Lang}
	if t.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.TessdataDir)
	}

	out, errb, err := t.runner.Run(ctx, t.Binary, args...)
	if err != nil {
		if len(errb) > 0 {
			return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}

	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}
