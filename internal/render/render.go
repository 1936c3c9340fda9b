// Package render turns a finished diagnostic report into HTML or PDF.
// PDF output pipes the rendered HTML through wkhtmltopdf.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"codeberg.org/mutker/diagctl/internal/errors"
	"codeberg.org/mutker/diagctl/internal/report"
)

const (
	FormatHTML = "html"
	FormatPDF  = "pdf"

	dirPerm  = 0o755
	filePerm = 0o644
)

//go:embed templates/default.html
var templates embed.FS

var reportTemplate = template.Must(template.ParseFS(templates, "templates/default.html"))

// HTML renders the report to outputPath and returns the written path.
func HTML(r report.Report, outputPath string) (string, error) {
	errFactory := errors.New()

	html, err := renderHTML(r)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), dirPerm); err != nil {
		return "", errFactory.Wrap(errors.ErrRenderFailed, err)
	}
	if err := os.WriteFile(outputPath, html, filePerm); err != nil {
		return "", errFactory.Wrap(errors.ErrRenderFailed, err)
	}

	return outputPath, nil
}

// PDF renders the report to outputPath via wkhtmltopdf.
func PDF(ctx context.Context, r report.Report, outputPath string) (string, error) {
	errFactory := errors.New()

	wkhtmltopdf, err := exec.LookPath("wkhtmltopdf")
	if err != nil {
		return "", errFactory.WithData(errors.ErrMissingBinary, "wkhtmltopdf")
	}

	html, err := renderHTML(r)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), dirPerm); err != nil {
		return "", errFactory.Wrap(errors.ErrRenderFailed, err)
	}

	cmd := exec.CommandContext(ctx, wkhtmltopdf, "--quiet", "-", outputPath)
	cmd.Stdin = bytes.NewReader(html)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", errFactory.WithData(errors.ErrRenderFailed, strings.TrimSpace(string(out)))
	}

	return outputPath, nil
}

// ExportLatest renders the newest JSON report in logDir into outDir as
// the given format and returns the written path.
func ExportLatest(ctx context.Context, logDir, outDir, format string) (string, error) {
	errFactory := errors.New()

	r, path, err := report.Latest(logDir)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch format {
	case FormatHTML:
		return HTML(r, filepath.Join(outDir, base+".html"))
	case FormatPDF:
		return PDF(ctx, r, filepath.Join(outDir, base+".pdf"))
	default:
		return "", errFactory.WithData(errors.ErrInvalidFormat, format)
	}
}

func renderHTML(r report.Report) ([]byte, error) {
	errFactory := errors.New()

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, buildPage(r)); err != nil {
		return nil, errFactory.Wrap(errors.ErrRenderFailed, err)
	}

	return buf.Bytes(), nil
}

type row struct {
	Name  string
	Value string
}

type page struct {
	Timestamp       string
	Status          string
	HealthScore     string
	UploadStatus    string
	Components      []row
	Warnings        []string
	Recommendations []string
	System          []row
	Usage           []row
}

// buildPage flattens the report map into template-friendly rows. The
// report may be fresh from a scan or decoded back from JSON, so values
// are stringified tolerantly.
func buildPage(r report.Report) page {
	p := page{
		Timestamp:       asString(r["timestamp"]),
		Status:          asString(r["status"]),
		HealthScore:     asString(r["health_score"]),
		UploadStatus:    asString(r["upload_status"]),
		Warnings:        asStrings(r["warnings"]),
		Recommendations: asStrings(r["recommendations"]),
		Components:      sortedRows(r["component_status"]),
		System:          sortedRows(r["system"]),
	}

	if storage, ok := r["storage"].(map[string]any); ok {
		p.Usage = sortedRows(storage["usage"])
	}
	if p.Status == "" {
		p.Status = report.Unavailable
	}

	return p
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	default:
		return fmt.Sprint(v)
	}
}

func asStrings(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, asString(item))
		}
		return out
	default:
		return nil
	}
}

func sortedRows(v any) []row {
	m, ok := v.(map[string]any)
	if !ok {
		if typed, isTyped := v.(map[string]string); isTyped {
			m = make(map[string]any, len(typed))
			for k, val := range typed {
				m[k] = val
			}
		} else {
			return nil
		}
	}

	rows := make([]row, 0, len(m))
	for name, value := range m {
		if _, nested := value.(map[string]any); nested {
			continue
		}
		rows = append(rows, row{Name: name, Value: asString(value)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	return rows
}
