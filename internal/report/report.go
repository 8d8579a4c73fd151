package report

import (
	"embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/groow/smoke/internal/domain/models"
)

//go:embed templates/report.html.tmpl
var templates embed.FS

var htmlTemplate = template.Must(template.New("report.html.tmpl").Funcs(template.FuncMap{
	"seconds": func(d time.Duration) string { return fmt.Sprintf("%.2fs", d.Seconds()) },
	"rfc3339": func(t time.Time) string { return t.Format(time.RFC3339) },
}).ParseFS(templates, "templates/report.html.tmpl"))

// CSVHeader is the first row of every CSV report.
var CSVHeader = []string{"Status", "Method", "Endpoint", "HTTP Code", "Expected", "Response Time (ms)", "Category", "Requires Auth", "Error"}

// Files lists the paths written by WriteAll.
type Files struct {
	JSON string
	CSV  string
	HTML string
}

// WriteJSON encodes the full summary, results included.
func WriteJSON(w io.Writer, summary models.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

// WriteCSV writes one row per result.
func WriteCSV(w io.Writer, summary models.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range summary.Results {
		status := "PASS"
		if !r.Success {
			status = "FAIL"
		}
		row := []string{
			status,
			r.Method,
			r.Endpoint,
			strconv.Itoa(r.StatusCode),
			r.Expected,
			strconv.FormatInt(r.ResponseTime, 10),
			r.Category,
			strconv.FormatBool(r.RequiresAuth),
			r.Error,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

type categoryRow struct {
	Name string
	models.CategoryStats
}

type htmlView struct {
	models.Summary
	Categories []categoryRow
}

// WriteHTML renders the standalone HTML report.
func WriteHTML(w io.Writer, summary models.Summary) error {
	view := htmlView{Summary: summary}
	for name, stats := range summary.CategorySummary {
		view.Categories = append(view.Categories, categoryRow{Name: name, CategoryStats: stats})
	}
	sort.Slice(view.Categories, func(i, j int) bool { return view.Categories[i].Name < view.Categories[j].Name })

	if err := htmlTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

// WriteAll writes <basename>.json, .csv and .html into dir, creating it when missing.
func WriteAll(dir, basename string, summary models.Summary) (Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("create report dir: %w", err)
	}

	files := Files{
		JSON: filepath.Join(dir, basename+".json"),
		CSV:  filepath.Join(dir, basename+".csv"),
		HTML: filepath.Join(dir, basename+".html"),
	}

	writers := []struct {
		path  string
		write func(io.Writer, models.Summary) error
	}{
		{files.JSON, WriteJSON},
		{files.CSV, WriteCSV},
		{files.HTML, WriteHTML},
	}
	for _, wr := range writers {
		if err := writeFile(wr.path, summary, wr.write); err != nil {
			return Files{}, err
		}
	}
	return files, nil
}

func writeFile(path string, summary models.Summary, write func(io.Writer, models.Summary) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return write(f, summary)
}
