// Package docparse turns uploaded lecture documents into plain text.
//
// Two file types are supported: PDF and Word. Legacy .doc files are classified
// as Word documents; they fail extraction because they are not OOXML packages,
// and the upload still succeeds with a failed Result.
package docparse

import (
	"fmt"
	"path/filepath"
	"strings"
)

type FileType string

const (
	TypePDF  FileType = "pdf"
	TypeDOCX FileType = "docx"
)

// Classify maps a filename to a supported type by its extension.
func Classify(filename string) (FileType, bool) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".pdf":
		return TypePDF, true
	case ".docx", ".doc":
		return TypeDOCX, true
	default:
		return "", false
	}
}

// Result is the outcome of one extraction pass. Err is set when the document
// could not be parsed; Text is then empty.
type Result struct {
	Text string
	Err  error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Marker renders a failed result the way older records stored it.
func (r Result) Marker() string {
	if r.Err == nil {
		return ""
	}
	return "Error: " + r.Err.Error()
}

// Extract runs the extractor for fileType against the raw document bytes.
func Extract(fileType FileType, data []byte) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Result{Err: fmt.Errorf("parser panic: %v", rec)}
		}
	}()

	var (
		text string
		err  error
	)
	switch fileType {
	case TypePDF:
		text, err = extractPDF(data)
	case TypeDOCX:
		text, err = extractDOCX(data)
	default:
		err = fmt.Errorf("unsupported file type %q", fileType)
	}
	if err != nil {
		return Result{Err: err}
	}
	return Result{Text: text}
}
