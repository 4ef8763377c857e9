package service

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/set-night/gptdesk/internal/config"
	"github.com/set-night/gptdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pythonSource = `#!/usr/bin/env python3
import sys


def greet(name):
    print(f"Hello, {name}!")


if __name__ == "__main__":
    greet(sys.argv[1])
`

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body bytes.Buffer
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + p + `</w:t></w:r></w:p>`)
	}
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() +
		`</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(document))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestIngestPlainTextRoundTrip(t *testing.T) {
	ing := NewIngestor(wordCounter{})
	content := "first line\nsecond line\n"

	info, err := ing.Ingest("notes.txt", []byte(content), "text/plain", "gpt-4o-mini")
	require.NoError(t, err)

	assert.Equal(t, "notes.txt", info.Name)
	assert.Equal(t, "text/plain", info.MimeType)
	assert.Equal(t, content, info.Content)
	assert.Equal(t, config.PlainTextLabel, info.Language)
	assert.Equal(t, int64(len(content)), info.Size)
	assert.Equal(t, 4, info.Tokens)
}

func TestIngestUnsupportedExtension(t *testing.T) {
	ing := NewIngestor(wordCounter{})

	info, err := ing.Ingest("setup.exe", []byte{0x4d, 0x5a}, "application/octet-stream", "gpt-4o-mini")
	require.Error(t, err)
	assert.Nil(t, info)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFileType))
	assert.Equal(t, "Unsupported file type: exe", err.Error())
}

func TestIngestInvalidUTF8(t *testing.T) {
	ing := NewIngestor(wordCounter{})

	_, err := ing.Ingest("data.txt", []byte{0xff, 0xfe, 0xfd}, "text/plain", "gpt-4o-mini")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFileProcessing))
	assert.True(t, errors.Is(err, errInvalidUTF8))
}

func TestIngestDetectsPython(t *testing.T) {
	ing := NewIngestor(wordCounter{})

	info, err := ing.Ingest("greet.py", []byte(pythonSource), "text/x-python", "gpt-4o-mini")
	require.NoError(t, err)
	assert.Contains(t, info.Language, "Python")
	assert.Equal(t, pythonSource, info.Content)
}

func TestIngestUppercaseExtension(t *testing.T) {
	ing := NewIngestor(wordCounter{})

	info, err := ing.Ingest("README.TXT", []byte("hello"), "text/plain", "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, config.PlainTextLabel, info.Language)
}

func TestIngestDOCX(t *testing.T) {
	ing := NewIngestor(wordCounter{})
	data := buildDOCX(t, "Quarterly report", "Revenue grew.")

	info, err := ing.Ingest("report.docx", data, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "Quarterly report\nRevenue grew.", info.Content)
	assert.Equal(t, "DOCX", info.Language)
	assert.Equal(t, int64(len(data)), info.Size)
}

// buildPDF writes a minimal PDF with one Helvetica text line per page.
func buildPDF(pages ...string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled in below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	var kids bytes.Buffer
	for _, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		contentRef := len(objects)
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentRef))
		fmt.Fprintf(&kids, "%d 0 R ", len(objects))
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids.String(), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestIngestPDF(t *testing.T) {
	ing := NewIngestor(wordCounter{})
	data := buildPDF("Hello page one", "Second page")

	info, err := ing.Ingest("slides.pdf", data, "application/pdf", "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "Hello page one\nSecond page", info.Content)
	assert.Equal(t, "PDF", info.Language)
	assert.Equal(t, 5, info.Tokens)
}

func TestIngestDOCXWithoutDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0"?><w:styles/>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = NewIngestor(wordCounter{}).Ingest("empty.docx", buf.Bytes(), "", "gpt-4o-mini")
	assert.ErrorIs(t, err, domain.ErrFileProcessing)
}

func TestIngestCorruptDocuments(t *testing.T) {
	ing := NewIngestor(wordCounter{})

	for _, name := range []string{"broken.pdf", "broken.docx"} {
		t.Run(name, func(t *testing.T) {
			_, err := ing.Ingest(name, []byte("definitely not a document"), "", "gpt-4o-mini")
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrFileProcessing), "got %v", err)

			var procErr *domain.FileProcessingError
			require.True(t, errors.As(err, &procErr))
			assert.Equal(t, name, procErr.Name)
			assert.NotNil(t, procErr.Err)
		})
	}
}

func TestIngestFileTooLarge(t *testing.T) {
	ing := NewIngestor(wordCounter{})

	info, err := ing.Ingest("big.txt", []byte(words(3097)), "text/plain", "gpt-3.5-turbo")
	require.Error(t, err)
	assert.Nil(t, info)

	var tooLarge *domain.FileTooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, 3097, tooLarge.Tokens)
	assert.Equal(t, 3096, tooLarge.Limit)

	_, err = ing.Ingest("fits.txt", []byte(words(3096)), "text/plain", "gpt-3.5-turbo")
	assert.NoError(t, err)
}

func TestFileExtension(t *testing.T) {
	tests := map[string]string{
		"main.go":         "go",
		"archive.tar.GZ":  "gz",
		"Report.DOCX":     "docx",
		"Makefile":        "makefile",
		"trailing.":       "",
		"dir.d/notes.txt": "txt",
	}
	for name, want := range tests {
		assert.Equal(t, want, FileExtension(name), name)
	}
}

func TestDetectLanguageFallsBackToPlainText(t *testing.T) {
	assert.Equal(t, config.PlainTextLabel, DetectLanguage("notes.unknownext", "just some words"))
	assert.NotEqual(t, config.PlainTextLabel, DetectLanguage("main.go", "package main\n\nimport \"fmt\"\n\nfunc main() { fmt.Println(1) }\n"))
}
