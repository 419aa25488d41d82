package docparse

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// extractDOCX joins the body paragraphs of word/document.xml with newlines.
// Paragraphs inside tables and text boxes are skipped.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("open docx: word/document.xml not found")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open docx body: %w", err)
	}
	defer rc.Close()

	paragraphs, err := readParagraphs(rc)
	if err != nil {
		return "", fmt.Errorf("parse docx body: %w", err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

func readParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		pDepth     int
		tblDepth   int
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "p":
				pDepth++
				if pDepth == 1 {
					current.Reset()
				}
			case "t":
				inText = true
			case "tab":
				if collecting(pDepth, tblDepth) {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if collecting(pDepth, tblDepth) {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tblDepth--
			case "p":
				if collecting(pDepth, tblDepth) {
					paragraphs = append(paragraphs, current.String())
				}
				pDepth--
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && collecting(pDepth, tblDepth) {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}

func collecting(pDepth, tblDepth int) bool {
	return pDepth == 1 && tblDepth == 0
}
