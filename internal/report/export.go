package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/law-makers/shelf/pkg/models"
)

// CSVHeader is the column order of CSV exports
var CSVHeader = []string{"name", "price", "rating", "review_count"}

// Save writes result to path in the format chosen by its extension
func Save(result *models.CollectionResult, path string) error {
	var write func(io.Writer, *models.CollectionResult) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		write = WriteJSON
	case ".csv":
		write = WriteCSV
	case ".md", ".markdown":
		write = WriteMarkdown
	case ".html", ".htm":
		write = WriteHTML
	default:
		return fmt.Errorf("unsupported output format %q (use .json, .csv, .md or .html)", filepath.Ext(path))
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file, result); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteJSON writes the result as indented JSON
func WriteJSON(w io.Writer, result *models.CollectionResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// WriteCSV writes one row per record
func WriteCSV(w io.Writer, result *models.CollectionResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range result.Records {
		row := []string{
			r.Name,
			strconv.FormatFloat(r.Price, 'f', 2, 64),
			strconv.FormatFloat(r.Rating, 'f', -1, 64),
			strconv.FormatInt(r.ReviewCount, 10),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteHTML writes the standalone HTML report
func WriteHTML(w io.Writer, result *models.CollectionResult) error {
	out, err := HTML(result)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// WriteMarkdown writes the report as GitHub flavored Markdown
func WriteMarkdown(w io.Writer, result *models.CollectionResult) error {
	out, err := Markdown(result)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out+"\n")
	return err
}

// Markdown converts the HTML report to Markdown
func Markdown(result *models.CollectionResult) (string, error) {
	page, err := HTML(result)
	if err != nil {
		return "", err
	}

	cleaned, err := CleanHTML(page)
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return converter.ConvertString(cleaned)
}
