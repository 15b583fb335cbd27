package plot

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"os/exec"
	"runtime"

	"github.com/evanw/esbuild/pkg/api"
)

//go:embed assets
var staticFiles embed.FS

// ChartWriter turns a composed chart document into a viewable artifact.
type ChartWriter interface {
	Write(doc *Document, output string) error
}

// HTMLWriter renders a chart document into a standalone HTML page with
// the chart script minified and inlined, so the output file can be
// shared without any sidecar assets.
type HTMLWriter struct {
	template *template.Template
}

// NewHTMLWriter creates a writer using the embedded page template.
func NewHTMLWriter() *HTMLWriter {
	return &HTMLWriter{
		template: template.Must(template.ParseFS(staticFiles, "assets/chart.html")),
	}
}

// Write renders the document to the output path. A partially written
// file is removed on failure so the caller never sees a broken chart.
func (w *HTMLWriter) Write(doc *Document, output string) error {
	script, err := staticFiles.ReadFile("assets/chart.js")
	if err != nil {
		return err
	}

	minified := api.Transform(string(script), api.TransformOptions{
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})
	if len(minified.Errors) > 0 {
		return fmt.Errorf("chart script: %s", minified.Errors[0].Text)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	file, err := os.Create(output)
	if err != nil {
		return err
	}

	err = w.template.Execute(file, map[string]any{
		"Title":    doc.Title,
		"Theme":    doc.Theme,
		"Document": template.JS(payload),
		"Script":   template.JS(minified.Code),
	})
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(output)
		return err
	}

	return nil
}

// OpenInViewer opens the file with the platform's default handler.
func OpenInViewer(path string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path).Start()
	default:
		return exec.Command("xdg-open", path).Start()
	}
}
