package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

const pageExtractTimeout = 10 * time.Second

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

func getDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".odt", ".rtf":
		return commonModels.DOCX
	case ".txt", ".md":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

func extractText(path string, contentType commonModels.DocType, log *logger_i.Logger) ([]rawPage, error) {
	switch contentType {
	case commonModels.PDF:
		return extractPDF(path, log)
	case commonModels.DOCX, commonModels.TXT:
		return extractWithCat(path)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

func extractPDF(path string, log *logger_i.Logger) ([]rawPage, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	log.Debug("extractPDF", "path", path, "pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// a single broken page should not lose the rest of the document
			log.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}
		pages = append(pages, rawPage{Number: i, Content: content})
	}
	return pages, nil
}

// cat handles .odt, .docx, .rtf and plain text; everything lands on one page
func extractWithCat(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document: %w", err)
	}
	return []rawPage{{Number: 1, Content: text}}, nil
}

// GetPlainText can spin on malformed content streams, so it gets a deadline.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{"", fmt.Errorf("pdf page panic: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	timer := time.NewTimer(pageExtractTimeout)
	defer timer.Stop()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-timer.C:
		return "", errors.New("page extraction timeout")
	}
}

func joinPages(pages []rawPage) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p.Content) == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(p.Content))
	}
	return strings.Join(parts, "\n\n")
}

// SupportedType reports whether a file name has an extension the loader can read.
func SupportedType(name string) bool {
	return getDocType(name) != commonModels.ERR
}
