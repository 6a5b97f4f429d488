package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrFileNotFound means the source document does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrExtractionFailed means the document could not be read as a PDF.
	ErrExtractionFailed = errors.New("pdf text extraction failed")
)

// ExtractFile pulls the plain text of a PDF on the local filesystem.
func ExtractFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return "", err
	}
	return ExtractTextFromBytes(context.Background(), data)
}

// ExtractTextFromBytes extracts text page by page, one line break between pages.
func ExtractTextFromBytes(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty document", ErrExtractionFailed)
	}
	text, err := extractPDF(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return text, nil
}

func extractPDF(data []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("parser panic: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if pageText != "" {
			b.WriteString(pageText)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String()), nil
}
