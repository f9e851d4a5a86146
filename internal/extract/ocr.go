package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finlens/internal/domain"
)

// UnavailableError reports that OCR cannot run because a required tool is missing.
type UnavailableError struct {
	Tool string
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("ocr unavailable: %s not found: %v", e.Tool, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// CommandRunner executes an external command and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w (%s)", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// OCROption customizes an OCR strategy.
type OCROption func(*OCR)

// WithLookPath overrides how tool binaries are located.
func WithLookPath(fn func(string) (string, error)) OCROption {
	return func(o *OCR) { o.lookPath = fn }
}

// WithCommandRunner overrides how external tools are executed.
func WithCommandRunner(fn CommandRunner) OCROption {
	return func(o *OCR) { o.run = fn }
}

// OCR rasterizes PDF pages with pdftoppm, cleans each page image and runs
// tesseract on it. Pages are processed concurrently and joined in order.
type OCR struct {
	dpi         int
	concurrency int
	lookPath    func(string) (string, error)
	run         CommandRunner
	logger      *zap.Logger
}

// NewOCR creates an OCR strategy.
func NewOCR(dpi, concurrency int, logger *zap.Logger, opts ...OCROption) *OCR {
	if dpi <= 0 {
		dpi = 300
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	o := &OCR{
		dpi:         dpi,
		concurrency: concurrency,
		lookPath:    exec.LookPath,
		run:         execRunner,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *OCR) Method() domain.ExtractionMethod { return domain.MethodOCR }

// Available checks that the rasterizer and the OCR engine are installed.
func (o *OCR) Available() error {
	for _, tool := range []string{"pdftoppm", "tesseract"} {
		if _, err := o.lookPath(tool); err != nil {
			return &UnavailableError{Tool: tool, Err: err}
		}
	}
	return nil
}

func (o *OCR) Extract(ctx context.Context, data []byte) (string, error) {
	if err := o.Available(); err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp("", "finlens-ocr-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, data, 0o600); err != nil {
		return "", fmt.Errorf("writing pdf: %w", err)
	}

	prefix := filepath.Join(dir, "page")
	if _, err := o.run(ctx, "pdftoppm", "-png", "-r", strconv.Itoa(o.dpi), input, prefix); err != nil {
		return "", fmt.Errorf("rasterizing pdf: %w", err)
	}

	images, err := filepath.Glob(prefix + "-*.png")
	if err != nil || len(images) == 0 {
		return "", fmt.Errorf("no page images generated")
	}
	sortByPageNumber(images)

	pages := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, img := range images {
		g.Go(func() error {
			text, err := o.recognizePage(gctx, img)
			if err != nil {
				o.logger.Warn("extract.OCR: page failed", zap.Int("page", i+1), zap.Error(err))
				return nil
			}
			pages[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, text := range pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		sb.WriteString(domain.PageMarker(i + 1))
		sb.WriteString("\n")
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return Clean(sb.String()), nil
}

func (o *OCR) recognizePage(ctx context.Context, path string) (string, error) {
	src, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening page image: %w", err)
	}

	processed := preprocess(src)
	out := strings.TrimSuffix(path, ".png") + "-clean.png"
	if err := imaging.Save(processed, out); err != nil {
		return "", fmt.Errorf("saving page image: %w", err)
	}

	text, err := o.run(ctx, "tesseract", out, "stdout", "-l", "eng", "--psm", "6")
	if err != nil {
		return "", err
	}
	return string(text), nil
}

// preprocess converts to greyscale, stretches contrast to the full range and sharpens.
func preprocess(src image.Image) image.Image {
	grey := imaging.Grayscale(src)

	lo, hi := uint8(255), uint8(0)
	for i := 0; i < len(grey.Pix); i += 4 {
		v := grey.Pix[i]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi > lo {
		scale := 255.0 / float64(hi-lo)
		grey = imaging.AdjustFunc(grey, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{
				R: stretch(c.R, lo, scale),
				G: stretch(c.G, lo, scale),
				B: stretch(c.B, lo, scale),
				A: c.A,
			}
		})
	}
	return imaging.Sharpen(grey, 1.0)
}

func stretch(v, lo uint8, scale float64) uint8 {
	if v <= lo {
		return 0
	}
	s := float64(v-lo) * scale
	if s > 255 {
		return 255
	}
	return uint8(s)
}

var pageNumberSuffix = regexp.MustCompile(`-(\d+)\.png$`)

func sortByPageNumber(files []string) {
	num := func(p string) int {
		m := pageNumberSuffix.FindStringSubmatch(filepath.Base(p))
		if m == nil {
			return 0
		}
		n, _ := strconv.Atoi(m[1])
		return n
	}
	sort.SliceStable(files, func(i, j int) bool { return num(files[i]) < num(files[j]) })
}
