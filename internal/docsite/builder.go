package docsite

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/dashlab/labctl/internal/logger"
)

// pageTemplate wraps every rendered page. IMAGE_TAG stamps which build of
// the stack the documentation was generated against.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
<main>
{{.Body}}
</main>
<footer>
<p>{{.Site}} &mdash; image tag: {{.ImageTag}}</p>
</footer>
</body>
</html>
`

// Builder regenerates a static HTML tree from a Markdown source directory.
// Every build is a full rebuild: the output directory is wiped first so no
// stale files survive.
type Builder struct {
	sourceDir string
	outputDir string
	title     string
	md        goldmark.Markdown
	tmpl      *template.Template
}

// New creates a new docs builder
func New(sourceDir, outputDir, title string) *Builder {
	return &Builder{
		sourceDir: sourceDir,
		outputDir: outputDir,
		title:     title,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
		),
		tmpl: template.Must(template.New("page").Parse(pageTemplate)),
	}
}

// OutputDir returns the directory Build writes into
func (b *Builder) OutputDir() string {
	return b.outputDir
}

// Build renders the whole source tree into the output directory. Markdown
// files become HTML pages; everything else is copied through as an asset.
func (b *Builder) Build() error {
	if _, err := os.Stat(b.sourceDir); err != nil {
		return fmt.Errorf("docs source directory not found: %s", b.sourceDir)
	}

	// Full rebuild: drop the previous output entirely.
	if err := os.RemoveAll(b.outputDir); err != nil {
		return fmt.Errorf("failed to clear output directory: %w", err)
	}
	if err := os.MkdirAll(b.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	imageTag := os.Getenv("IMAGE_TAG")
	if imageTag == "" {
		imageTag = "unknown"
	}

	pages := 0
	err := filepath.WalkDir(b.sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(b.sourceDir, path)
		if err != nil {
			return err
		}

		if strings.EqualFold(filepath.Ext(path), ".md") {
			if err := b.renderPage(path, rel, imageTag); err != nil {
				return err
			}
			pages++
			return nil
		}
		return b.copyAsset(path, rel)
	})
	if err != nil {
		return fmt.Errorf("docs build failed: %w", err)
	}

	logger.Info("Built %d documentation pages into %s", pages, b.outputDir)
	return nil
}

// renderPage renders one Markdown file into the mirrored output path.
func (b *Builder) renderPage(path, rel, imageTag string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	// Version stamp substitution, mirroring the docs' |image_tag| prolog.
	source = bytes.ReplaceAll(source, []byte("|image_tag|"), []byte(imageTag))

	var body bytes.Buffer
	if err := b.md.Convert(source, &body); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}

	outPath := filepath.Join(b.outputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".html")
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output subdirectory: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer out.Close()

	pageTitle := b.title
	if title := firstHeading(source); title != "" {
		pageTitle = fmt.Sprintf("%s - %s", title, b.title)
	}

	return b.tmpl.Execute(out, map[string]interface{}{
		"Title":    pageTitle,
		"Site":     b.title,
		"Body":     template.HTML(body.String()),
		"ImageTag": imageTag,
	})
}

// copyAsset copies a non-Markdown file verbatim into the output tree.
func (b *Builder) copyAsset(path, rel string) error {
	outPath := filepath.Join(b.outputDir, rel)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output subdirectory: %w", err)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open asset %s: %w", path, err)
	}
	defer src.Close()

	dst, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create asset %s: %w", outPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy asset %s: %w", rel, err)
	}
	return nil
}

// firstHeading extracts the first level-one Markdown heading, if any.
func firstHeading(source []byte) string {
	for _, line := range strings.Split(string(source), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}
