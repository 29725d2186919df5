package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/lmoreira/acervo/internal/model"
)

func TestParseCSV(t *testing.T) {
	csvData := "Nome,Categoria,Descrição,Quantidade,Localização\n" +
		"Lupa,Ciências,Lupa de aumento 5x,3,Armário B\n" +
		"Flauta Doce,Música,,,\n"

	drafts, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(drafts))
	}

	first := drafts[0]
	if first.Name != "Lupa" || first.Category != "Ciências" || first.Quantity != 3 {
		t.Errorf("unexpected first draft: %+v", first)
	}
	if first.Location != "Armário B" {
		t.Errorf("expected location from cell, got %q", first.Location)
	}

	second := drafts[1]
	if second.Category != DefaultCategory {
		t.Errorf("expected default category, got %q", second.Category)
	}
	if second.Location != DefaultLocation {
		t.Errorf("expected default location, got %q", second.Location)
	}
	if second.Quantity != 1 {
		t.Errorf("expected default quantity 1, got %d", second.Quantity)
	}
	if len(second.Images) != 1 || second.Images[0] != model.PlaceholderImage {
		t.Errorf("expected placeholder image, got %v", second.Images)
	}
}

func TestParseCSVSemicolonDelimiter(t *testing.T) {
	csvData := "Material;Area;Qtd\nGlobo Terrestre;Geografia;2\n"

	drafts, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
	if drafts[0].Name != "Globo Terrestre" || drafts[0].Category != "Geografia" || drafts[0].Quantity != 2 {
		t.Errorf("unexpected draft: %+v", drafts[0])
	}
}

func TestParseCSVHeaderSynonymsAccentInsensitive(t *testing.T) {
	cases := []string{
		"ITEM,CATEGORIA\nLupa,Ciências\n",
		"Título,Área\nLupa,Ciências\n",
		"material, categoria \nLupa,Ciências\n",
		"Name,Category\nLupa,Ciências\n",
	}
	for _, csvData := range cases {
		drafts, err := ParseCSV(strings.NewReader(csvData))
		if err != nil {
			t.Errorf("header %q: %v", strings.SplitN(csvData, "\n", 2)[0], err)
			continue
		}
		if len(drafts) != 1 || drafts[0].Name != "Lupa" {
			t.Errorf("header %q: unexpected drafts %+v", strings.SplitN(csvData, "\n", 2)[0], drafts)
		}
	}
}

func TestParseCSVWindows1252(t *testing.T) {
	// "Bússola,Orientação" in Windows-1252 (0xFA = ú, 0xE7 = ç, 0xE3 = ã).
	raw := append([]byte("Nome,Categoria\nB"), 0xFA)
	raw = append(raw, []byte("ssola,Orienta")...)
	raw = append(raw, 0xE7, 0xE3)
	raw = append(raw, []byte("o\n")...)

	drafts, err := ParseCSV(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
	if drafts[0].Name != "Bússola" || drafts[0].Category != "Orientação" {
		t.Errorf("encoding not decoded: %+v", drafts[0])
	}
}

func TestParseCSVUTF8BOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Nome,Categoria\nLupa,Ciências\n")...)

	drafts, err := ParseCSV(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(drafts) != 1 || drafts[0].Name != "Lupa" {
		t.Errorf("BOM not stripped: %+v", drafts)
	}
}

func TestParseCSVBlankNameCell(t *testing.T) {
	csvData := "Nome,Categoria\n  ,Ciências\n"

	drafts, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if drafts[0].Name != UnnamedItem {
		t.Errorf("expected %q for blank name cell, got %q", UnnamedItem, drafts[0].Name)
	}
}

func TestParseCSVNoNameColumn(t *testing.T) {
	csvData := "Preço,Fornecedor\n10,Loja X\n"

	_, err := ParseCSV(strings.NewReader(csvData))
	if !IsImportError(err) {
		t.Fatalf("expected ImportError, got %v", err)
	}
}

func TestParseCSVEmptyFile(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	if !IsImportError(err) {
		t.Errorf("expected ImportError for empty file, got %v", err)
	}

	_, err = ParseCSV(strings.NewReader("Nome,Categoria\n"))
	if !IsImportError(err) {
		t.Errorf("expected ImportError for header-only file, got %v", err)
	}
}

func TestParseCSVSkipsBlankRows(t *testing.T) {
	csvData := "Nome,Categoria\nLupa,Ciências\n,,\n  , \nFlauta,Música\n"

	drafts, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(drafts) != 2 {
		t.Errorf("expected blank rows skipped, got %d drafts", len(drafts))
	}
}

func TestParseCSVQuantity(t *testing.T) {
	csvData := "Nome,Quantidade\nA,5\nB,zero\nC,-2\nD,\n"

	drafts, err := ParseCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	want := []int{5, 1, 1, 1}
	for i, q := range want {
		if drafts[i].Quantity != q {
			t.Errorf("row %d: expected quantity %d, got %d", i, q, drafts[i].Quantity)
		}
	}
}

func TestParseXLSX(t *testing.T) {
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	book.SetCellValue(sheet, "A1", "Nome")
	book.SetCellValue(sheet, "B1", "Categoria")
	book.SetCellValue(sheet, "C1", "Quantidade")
	book.SetCellValue(sheet, "A2", "Teodolito")
	book.SetCellValue(sheet, "B2", "Matemática")
	book.SetCellValue(sheet, "C2", 2)

	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		t.Fatalf("writing workbook: %v", err)
	}

	drafts, err := ParseXLSX(&buf)
	if err != nil {
		t.Fatalf("ParseXLSX: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
	if drafts[0].Name != "Teodolito" || drafts[0].Category != "Matemática" || drafts[0].Quantity != 2 {
		t.Errorf("unexpected draft: %+v", drafts[0])
	}
}

func TestParseXLSXGarbage(t *testing.T) {
	_, err := ParseXLSX(strings.NewReader("not a zip archive"))
	if !IsImportError(err) {
		t.Errorf("expected ImportError, got %v", err)
	}
}

func TestParseDispatchesOnExtension(t *testing.T) {
	drafts, err := Parse("inventario.csv", strings.NewReader("Nome\nLupa\n"))
	if err != nil {
		t.Fatalf("Parse csv: %v", err)
	}
	if len(drafts) != 1 {
		t.Errorf("expected 1 draft, got %d", len(drafts))
	}

	if _, err := Parse("inventario.XLSX", strings.NewReader("junk")); !IsImportError(err) {
		t.Errorf("expected ImportError from xlsx path, got %v", err)
	}
}
