package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PdftotextEngine shells out to the poppler pdftotext binary.
type PdftotextEngine struct {
	binary string
}

func NewPdftotextEngine() *PdftotextEngine {
	path, err := exec.LookPath("pdftotext")
	if err != nil {
		return &PdftotextEngine{}
	}
	return &PdftotextEngine{binary: path}
}

func (e *PdftotextEngine) Name() string { return "pdftotext" }

func (e *PdftotextEngine) Available() bool { return e.binary != "" }

func (e *PdftotextEngine) Extract(ctx context.Context, pdfPath, textPath string) error {
	cmd := exec.CommandContext(ctx, e.binary, "-layout", "-enc", "UTF-8", pdfPath, textPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("pdftotext: %s", msg)
		}
		return fmt.Errorf("pdftotext: %w", err)
	}
	return nil
}
