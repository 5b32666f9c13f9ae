// Package extract turns resume files into plain text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	SourcePDF  = "pdf_upload"
	SourceText = "text"
)

var pdfMagic = []byte("%PDF-")

// ErrNoText is returned when a document yields no readable text.
var ErrNoText = errors.New("no text could be extracted")

// Document is the extracted resume text with the source it came from.
type Document struct {
	Text   string
	Source string
}

// ReadFile extracts text from a PDF or plain-text resume on disk.
func ReadFile(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resume %s: %w", path, err)
	}

	doc, err := FromBytes(ctx, data, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("extract resume %s: %w", path, err)
	}
	return doc, nil
}

// FromBytes extracts text from an in-memory payload. PDFs are detected by
// their magic header or a .pdf extension; anything else must be UTF-8 text.
func FromBytes(ctx context.Context, data []byte, fileName string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		doc = &Document{}
		err error
	)
	if bytes.HasPrefix(data, pdfMagic) || strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		doc.Source = SourcePDF
		doc.Text, err = extractPDF(data)
	} else {
		doc.Source = SourceText
		doc.Text, err = extractText(data)
	}
	if err != nil {
		return nil, err
	}

	doc.Text = strings.TrimSpace(doc.Text)
	if doc.Text == "" {
		return nil, ErrNoText
	}
	return doc, nil
}

// extractPDF recovers from the panics the pdf package raises on malformed content streams.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf text: %v", r)
		}
	}()

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("unsupported file: not a PDF or UTF-8 text")
	}
	return string(data), nil
}
