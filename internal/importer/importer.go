// Package importer turns uploaded inventory spreadsheets (CSV or XLSX)
// into item drafts. Headers are matched case- and accent-insensitively
// against the column names school staff actually use, and missing cells
// fall back to catalog defaults.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/lmoreira/acervo/internal/inventory"
	"github.com/lmoreira/acervo/internal/model"
)

// Import defaults for cells the spreadsheet does not fill in.
const (
	DefaultLocation = "Almoxarifado"
	DefaultCategory = "Geral"
	UnnamedItem     = "Sem Nome"
)

// ImportError reports a dataset-level problem: an unreadable file, no
// recognizable name column, or no data rows. Nothing is imported.
type ImportError struct {
	Reason string
}

func (e *ImportError) Error() string {
	return "import failed: " + e.Reason
}

// IsImportError reports whether err is an ImportError.
func IsImportError(err error) bool {
	_, ok := err.(*ImportError)
	return ok
}

// columns holds the resolved header index for each recognized field.
// -1 means the column is absent.
type columns struct {
	name        int
	category    int
	description int
	quantity    int
	location    int
	image       int
}

// Header synonyms, matched after lowercasing and accent stripping, so
// "Descrição", "DESCRICAO" and "descricao" all resolve the same way.
var headerSynonyms = map[string][]string{
	"name":        {"nome", "item", "material", "name", "titulo"},
	"category":    {"categoria", "category", "area"},
	"description": {"descricao", "description"},
	"quantity":    {"quantidade", "quantity", "qtd"},
	"location":    {"localizacao", "location", "local"},
	"image":       {"imagem", "image", "imageurl", "foto"},
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeHeader lowercases a header cell and strips accents and
// whitespace for synonym matching.
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	if out, _, err := transform.String(stripAccents, s); err == nil {
		return out
	}
	return s
}

func resolveColumns(header []string) columns {
	cols := columns{name: -1, category: -1, description: -1, quantity: -1, location: -1, image: -1}

	for i, cell := range header {
		normalized := normalizeHeader(cell)
		for field, synonyms := range headerSynonyms {
			for _, synonym := range synonyms {
				if normalized != synonym {
					continue
				}
				switch field {
				case "name":
					if cols.name < 0 {
						cols.name = i
					}
				case "category":
					if cols.category < 0 {
						cols.category = i
					}
				case "description":
					if cols.description < 0 {
						cols.description = i
					}
				case "quantity":
					if cols.quantity < 0 {
						cols.quantity = i
					}
				case "location":
					if cols.location < 0 {
						cols.location = i
					}
				case "image":
					if cols.image < 0 {
						cols.image = i
					}
				}
			}
		}
	}
	return cols
}

// ParseCSV reads a CSV upload into item drafts. The delimiter is
// auto-detected between comma and semicolon, since Excel exports
// semicolons in pt-BR locales.
func ParseCSV(r io.Reader) ([]inventory.Draft, error) {
	utf8r, err := newUTF8Reader(r)
	if err != nil {
		return nil, &ImportError{Reason: fmt.Sprintf("detecting encoding: %v", err)}
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, &ImportError{Reason: fmt.Sprintf("reading file: %v", err)}
	}

	rows, err := readCSVRows(data, ',')
	if err != nil || len(rows) == 0 {
		if semicolonRows, semicolonErr := readCSVRows(data, ';'); semicolonErr == nil && len(semicolonRows) > 0 {
			rows, err = semicolonRows, nil
		}
	}
	if err != nil {
		return nil, &ImportError{Reason: fmt.Sprintf("reading csv: %v", err)}
	}

	// A single-column result from a comma parse usually means the file
	// is semicolon-delimited.
	if len(rows) > 0 && len(rows[0]) == 1 && strings.Contains(rows[0][0], ";") {
		if semicolonRows, semicolonErr := readCSVRows(data, ';'); semicolonErr == nil {
			rows = semicolonRows
		}
	}

	return draftsFromRows(rows)
}

func readCSVRows(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

// ParseXLSX reads the first sheet of an XLSX upload into item drafts.
func ParseXLSX(r io.Reader) ([]inventory.Draft, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ImportError{Reason: fmt.Sprintf("opening workbook: %v", err)}
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ImportError{Reason: "workbook has no sheets"}
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, &ImportError{Reason: fmt.Sprintf("reading sheet: %v", err)}
	}

	return draftsFromRows(rows)
}

// Parse dispatches on the uploaded filename's extension.
func Parse(filename string, r io.Reader) ([]inventory.Draft, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return ParseXLSX(r)
	}
	return ParseCSV(r)
}

func draftsFromRows(rows [][]string) ([]inventory.Draft, error) {
	if len(rows) == 0 {
		return nil, &ImportError{Reason: "file is empty"}
	}

	cols := resolveColumns(rows[0])
	if cols.name < 0 {
		return nil, &ImportError{Reason: "no name column found (expected one of: nome, item, material, name, titulo)"}
	}

	var drafts []inventory.Draft
	for _, row := range rows[1:] {
		if rowBlank(row) {
			continue
		}

		draft := inventory.Draft{
			Name:        cell(row, cols.name),
			Category:    cell(row, cols.category),
			Description: cell(row, cols.description),
			Location:    cell(row, cols.location),
			Quantity:    parseQuantity(cell(row, cols.quantity)),
		}
		if draft.Name == "" {
			draft.Name = UnnamedItem
		}
		if draft.Category == "" {
			draft.Category = DefaultCategory
		}
		if draft.Location == "" {
			draft.Location = DefaultLocation
		}
		if image := cell(row, cols.image); image != "" {
			draft.Images = []string{image}
		} else {
			draft.Images = []string{model.PlaceholderImage}
		}

		drafts = append(drafts, draft)
	}

	if len(drafts) == 0 {
		return nil, &ImportError{Reason: "no data rows found"}
	}
	return drafts, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func rowBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseQuantity(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
