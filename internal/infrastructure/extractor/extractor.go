package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/kpetrov/docflow/internal/core/domain"
)

// rawFallbackBytes caps how much of an unrecognized binary payload is
// base64-encoded into the excerpt.
const rawFallbackBytes = 4096

// Extractor converts uploaded file bytes into a plain-text excerpt for the
// metadata stage. Extraction is best-effort and never fails: corrupt or
// unsupported input degrades to a lossy decode of the raw bytes.
type Extractor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

func (e *Extractor) Extract(filename string, data []byte) string {
	ext := domain.FileExtension(filename)

	var text string
	switch ext {
	case "pdf":
		text = e.extractPDF(filename, data)
	case "docx":
		text = e.extractDocx(filename, data)
	case "xlsx":
		text = e.extractXlsx(filename, data)
	case "txt", "csv", "md", "log":
		text = string(data)
	default:
		if utf8.Valid(data) {
			text = string(data)
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text = rawFallback(data)
	}
	return text
}

// extractPDF walks every page and concatenates its text content. The pdf
// library panics on some malformed files, so the whole pass is recovered.
func (e *Extractor) extractPDF(filename string, data []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("pdf extraction panicked", "filename", filename, "panic", r)
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Warn("pdf open failed", "filename", filename, "error", err)
		return ""
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// docx is a zip archive; the body text lives in word/document.xml as <w:t>
// runs. Decoding just the character data of those elements is enough for an
// excerpt.
func (e *Extractor) extractDocx(filename string, data []byte) string {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Warn("docx open failed", "filename", filename, "error", err)
		return ""
	}

	var docXML []byte
	for _, f := range archive.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return ""
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return ""
		}
		break
	}
	if docXML == nil {
		return ""
	}

	decoder := xml.NewDecoder(bytes.NewReader(docXML))
	var sb strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "p":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String()
}

func (e *Extractor) extractXlsx(filename string, data []byte) string {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		e.logger.Warn("xlsx open failed", "filename", filename, "error", err)
		return ""
	}
	defer book.Close()

	var sb strings.Builder
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			continue
		}
		sb.WriteString(sheet)
		sb.WriteString("\n")
		for _, row := range rows {
			sb.WriteString(strings.Join(row, " "))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func rawFallback(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if utf8.Valid(data) {
		return strings.TrimSpace(string(data))
	}
	if len(data) > rawFallbackBytes {
		data = data[:rawFallbackBytes]
	}
	return base64.StdEncoding.EncodeToString(data)
}
