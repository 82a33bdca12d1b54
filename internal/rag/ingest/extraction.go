package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/akolanti/DocRAG/internal/domain/commonModels"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
	"golang.org/x/text/encoding/charmap"
)

const pageExtractTimeout = 10 * time.Second

var extensionTypes = map[string]commonModels.DocType{
	".pdf":  commonModels.PDF,
	".docx": commonModels.DOCX,
	".txt":  commonModels.TXT,
	".md":   commonModels.MD,
}

// SupportedExtensions lists the file extensions ExtractText accepts.
func SupportedExtensions() []string {
	return []string{".pdf", ".txt", ".md", ".docx"}
}

func DocTypeFromExtension(ext string) commonModels.DocType {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return commonModels.ERR
}

func DocTypeFromPath(path string) commonModels.DocType {
	return DocTypeFromExtension(filepath.Ext(path))
}

// PageSpan marks where a page begins in the extracted text, as the index of its first word
// in strings.Fields(text).
type PageSpan struct {
	Number    int
	FirstWord int
}

// Extracted is the plain text of a document. Pages is only set for paged formats (PDF).
type Extracted struct {
	Text  string
	Pages []PageSpan
}

// PageOf returns the page holding the given word index, 0 when the document has no pages.
func (e Extracted) PageOf(word int) int {
	page := 0
	for _, p := range e.Pages {
		if p.FirstWord > word {
			break
		}
		page = p.Number
	}
	return page
}

// ExtractText converts the file at path to plain text according to its declared extension.
func ExtractText(path string, ext string) (string, error) {
	e, err := Extract(path, ext)
	return e.Text, err
}

// Extract is ExtractText that also keeps the page layout of PDFs.
func Extract(path string, ext string) (Extracted, error) {
	var (
		out Extracted
		err error
	)
	switch DocTypeFromExtension(ext) {
	case commonModels.PDF:
		out, err = extractPDF(path)
	case commonModels.DOCX:
		out.Text, err = extractDocx(path)
	case commonModels.TXT, commonModels.MD:
		out.Text, err = extractPlainText(path)
	default:
		return Extracted{}, fmt.Errorf("%w: %q", commonModels.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Extracted{}, &commonModels.ExtractionError{Path: path, Cause: err}
	}
	// trimming whitespace leaves the word positions unchanged
	out.Text = strings.TrimSpace(out.Text)
	return out, nil
}

func extractPDF(path string) (Extracted, error) {
	logger.Debug("extractPDF", "attempting extraction", path)
	f, err := os.Open(path)
	if err != nil {
		return Extracted{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Extracted{}, err
	}

	reader, err := openPDF(f, info.Size())
	if err != nil {
		return Extracted{}, fmt.Errorf("failed to open pdf: %w", err)
	}

	var (
		sb    strings.Builder
		pages []PageSpan
		words int
	)
	numPages := reader.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			logger.Debug("extractPDF", "null page", i)
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// a single bad page should not sink the whole document
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		n := len(strings.Fields(content))
		if n == 0 {
			continue
		}
		pages = append(pages, PageSpan{Number: i, FirstWord: words})
		words += n
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return Extracted{Text: sb.String(), Pages: pages}, nil
}

// openPDF recovers from parser panics on malformed files.
func openPDF(f *os.File, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("corrupt pdf: %v", rec)
		}
	}()
	return pdf.NewReader(f, size)
}

func extractDocx(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	text, err := cat.File(path)
	if err != nil {
		return "", fmt.Errorf("failed to extract docx: %w", err)
	}
	return text, nil
}

func extractPlainText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	logger.Debug("extractPlainText", "falling back to latin-1", path)
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding latin-1: %w", err)
	}
	return string(decoded), nil
}

func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				resChan <- result{"", fmt.Errorf("page decode panic: %v", rec)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(pageExtractTimeout):
		return "", errors.New("timeout")
	}
}
