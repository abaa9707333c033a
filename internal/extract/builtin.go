package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// BuiltinEngine reads PDFs with a pure-Go parser. It needs no external
// binary, at the cost of poorer layout fidelity than pdftotext.
type BuiltinEngine struct{}

func NewBuiltinEngine() *BuiltinEngine { return &BuiltinEngine{} }

func (e *BuiltinEngine) Name() string { return "builtin" }

func (e *BuiltinEngine) Available() bool { return true }

func (e *BuiltinEngine) Extract(_ context.Context, pdfPath, textPath string) (err error) {
	// The parser panics on some malformed documents instead of returning an
	// error; treat that like any other decode failure.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("builtin reader: %v", r)
		}
	}()

	file, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var chunks []string
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A page that will not decode contributes nothing rather than
			// sinking the whole document.
			continue
		}
		chunks = append(chunks, text)
	}

	text := strings.TrimSpace(strings.Join(chunks, "\n\n"))
	if err := os.WriteFile(textPath, []byte(text), 0o600); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}
