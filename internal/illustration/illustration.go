// Package illustration turns a recommendation into a poster-style image.
package illustration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"librarian/internal/keywords"
	"librarian/internal/llm/openai"
)

var titleHint = regexp.MustCompile(`(?i)Recomandare:\s*(.+)`)

// DefaultThemes are used when no summary is available to derive themes from.
var DefaultThemes = []string{"prietenie", "aventură"}

const trimSet = " '\"\t"

// ExtractTitle recovers the book title from a reply. It reads the
// "Recomandare:" line when present, otherwise the first non-empty line.
func ExtractTitle(reply string) (string, bool) {
	if m := titleHint.FindStringSubmatch(reply); m != nil {
		if t := strings.Trim(m[1], trimSet+"\r"); t != "" {
			return t, true
		}
	}
	for _, line := range strings.Split(reply, "\n") {
		if t := strings.Trim(line, trimSet+"\r"); t != "" {
			return t, true
		}
	}
	return "", false
}

// Slugify keeps letters and digits lowercased and turns everything else into dashes.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// BuildPrompt writes the image prompt in Romanian ("ro") or English.
func BuildPrompt(title string, themes []string, lang string) string {
	if len(themes) == 0 {
		themes = DefaultThemes
	}
	t := strings.Join(themes, ", ")
	if lang == "ro" {
		return fmt.Sprintf("Ilustrație originală, tip poster, inspirată de cartea „%s”. "+
			"Nu reproduce sau imita coperți existente sau materiale protejate de drepturi de autor. "+
			"Evidențiază vizual temele: %s. "+
			"Stil cinematic, compoziție clară, detalii bogate, luminozitate echilibrată.", title, t)
	}
	return fmt.Sprintf("Original poster-style illustration inspired by the book '%s'. "+
		"Do not recreate or imitate existing covers or copyrighted material. "+
		"Highlight themes: %s. Cinematic, clear composition, rich details, balanced lighting.", title, t)
}

// ImageGenerator produces encoded image bytes for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req openai.ImageRequest) ([]byte, error)
}

// SummarySource supplies summaries to derive themes from.
type SummarySource interface {
	Has(title string) bool
	Resolve(title string) string
}

type Config struct {
	OutputDir string
	Model     string
	Size      string
	Lang      string
	// ThemeCount is how many summary keywords become themes.
	ThemeCount int
}

type Illustrator struct {
	images    ImageGenerator
	summaries SummarySource
	keywords  *keywords.Extractor
	cfg       Config
	logger    *slog.Logger
}

func New(images ImageGenerator, summaries SummarySource, cfg Config, logger *slog.Logger) *Illustrator {
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join("outputs", "images")
	}
	if cfg.Model == "" {
		cfg.Model = "dall-e-3"
	}
	if cfg.Size == "" {
		cfg.Size = "1024x1024"
	}
	if cfg.Lang == "" {
		cfg.Lang = "ro"
	}
	if cfg.ThemeCount <= 0 {
		cfg.ThemeCount = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Illustrator{images: images, summaries: summaries, keywords: keywords.NewExtractor(), cfg: cfg, logger: logger}
}

// Themes derives themes from the title's summary, or DefaultThemes.
func (il *Illustrator) Themes(title string) []string {
	if il.summaries == nil || !il.summaries.Has(title) {
		return DefaultThemes
	}
	themes := il.keywords.Top(il.summaries.Resolve(title), il.cfg.ThemeCount)
	if len(themes) == 0 {
		return DefaultThemes
	}
	return themes
}

// Generate renders an image for title and returns the written file path.
func (il *Illustrator) Generate(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errors.New("no title to illustrate")
	}
	slug := Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("title %q has no usable file name", title)
	}
	prompt := BuildPrompt(title, il.Themes(title), il.cfg.Lang)
	img, err := il.images.GenerateImage(ctx, openai.ImageRequest{Model: il.cfg.Model, Prompt: prompt, Size: il.cfg.Size})
	if err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}
	if err := os.MkdirAll(il.cfg.OutputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(il.cfg.OutputDir, slug+".png")
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return "", err
	}
	il.logger.Info("illustration written", "title", title, "path", path)
	return path, nil
}

// FromReply extracts the title from reply and generates its illustration.
func (il *Illustrator) FromReply(ctx context.Context, reply string) (string, error) {
	title, ok := ExtractTitle(reply)
	if !ok {
		return "", errors.New("no title found in reply")
	}
	return il.Generate(ctx, title)
}
