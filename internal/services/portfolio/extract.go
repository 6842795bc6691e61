package portfolio

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxStatementChars truncates statement text to keep the extraction prompt
// within the model's context limits.
const maxStatementChars = 50000

// extractPDFText extracts text content from a statement PDF.
func extractPDFText(pdfPath string) (string, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	totalPages := r.NumPage()

	for i := 1; i <= totalPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")

		if sb.Len() > maxStatementChars {
			break
		}
	}

	result := sb.String()
	if len(result) > maxStatementChars {
		result = result[:maxStatementChars]
	}
	if strings.TrimSpace(result) == "" {
		return "", fmt.Errorf("no text extracted from %s", pdfPath)
	}

	return result, nil
}
