// Package carousel adds an HTML slideshow of the JPEG screenshots of a test to its result.
package carousel

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/gabriel-vasile/mimetype"

	"github.com/farcloser/xcresults"
	"github.com/farcloser/xcresults/internal/output"
)

const (
	// AttachmentName is the name of the attachment added to every processed result.
	AttachmentName = "Carousel"

	imageExtension = ".jpeg"
	defaultMIME    = "image/jpeg"
	htmlMIME       = "text/html"
	htmlExtension  = "html"
	templateName   = "carousel.html"
)

//go:embed templates/carousel.html
var templates embed.FS

// Image is one slide.
type Image struct {
	Name string
	MIME string
	// Data holds the raw file bytes. The template encodes them.
	Data string
}

// Carousel is the data handed to the template.
type Carousel struct {
	Images []Image
}

// Processor renders and attaches carousels.
type Processor struct {
	template *template.Template
}

// New loads the template at templatePath, or the embedded one when templatePath is empty.
func New(templatePath string) (*Processor, error) {
	tmpl := template.New(templateName).Funcs(sprig.HtmlFuncMap())

	var err error

	if templatePath == "" {
		tmpl, err = tmpl.ParseFS(templates, "templates/"+templateName)
	} else {
		var content []byte

		content, err = os.ReadFile(templatePath) //nolint:gosec // user supplied template
		if err == nil {
			tmpl, err = tmpl.Parse(string(content))
		}
	}

	if err != nil {
		return nil, fmt.Errorf("loading carousel template: %w", err)
	}

	return &Processor{template: tmpl}, nil
}

// Process adds a carousel to every result of outputDir that has JPEG attachments.
// results is keyed by result file path. Failures are logged and skip the result.
func (p *Processor) Process(outputDir string, results map[string]*xcresults.TestResult) {
	slog.Info("carousel attachment feature enabled")

	paths := make([]string, 0, len(results))
	for path := range results {
		paths = append(paths, path)
	}

	slices.Sort(paths)

	for _, path := range paths {
		if _, err := p.ProcessResult(outputDir, path, results[path]); err != nil {
			slog.Warn("cannot create carousel attachment", "result", path, "error", err)
		}
	}
}

// ProcessResult attaches a carousel to a single result and rewrites it at path.
// It reports false when the result has no readable JPEG attachment.
func (p *Processor) ProcessResult(outputDir, path string, result *xcresults.TestResult) (bool, error) {
	images := collect(outputDir, &result.Executable)
	if len(images) == 0 {
		return false, nil
	}

	var buf bytes.Buffer
	if err := p.template.Execute(&buf, &Carousel{Images: images}); err != nil {
		return false, fmt.Errorf("rendering carousel: %w", err)
	}

	source := output.AttachmentFileName(htmlExtension)

	//nolint:gosec // attachments are meant to be world readable, like the results
	if err := os.WriteFile(filepath.Join(outputDir, source), buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("writing carousel: %w", err)
	}

	result.Attachments = append(result.Attachments, xcresults.Attachment{
		Name:   AttachmentName,
		Source: source,
		Type:   htmlMIME,
	})

	if err := output.WriteResultFile(path, result); err != nil {
		return false, err
	}

	slog.Debug("carousel.ProcessResult", "result", path, "images", len(images), "source", source)

	return true, nil
}

// collect gathers the JPEG attachments of the whole tree, depth-first.
// Attachments whose file cannot be read are left out.
func collect(outputDir string, root *xcresults.Executable) []Image {
	var images []Image

	root.Walk(func(node *xcresults.Executable) {
		for _, attachment := range node.Attachments {
			if !strings.HasSuffix(attachment.Name, imageExtension) {
				continue
			}

			data, err := os.ReadFile(filepath.Join(outputDir, attachment.Source))
			if err != nil {
				slog.Debug("carousel.collect", "source", attachment.Source, "error", err)

				continue
			}

			images = append(images, Image{
				Name: attachment.Name,
				MIME: sniff(data),
				Data: string(data),
			})
		}
	})

	return images
}

func sniff(data []byte) string {
	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return defaultMIME
	}

	return detected.String()
}
