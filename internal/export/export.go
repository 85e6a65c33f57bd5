// Package export copies or downloads generated Q&A text.
package export

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/cexll/repoqa/internal/qa"
)

// FileName is the name of downloaded Q&A files.
const FileName = "repo-qa.txt"

// CopiedMessage is flashed after a successful copy.
const CopiedMessage = "Copied to clipboard"

// FlashDuration is how long CopiedMessage stays visible.
const FlashDuration = 1200 * time.Millisecond

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// Flasher shows a transient status message. *status.Board implements it.
type Flasher interface {
	Flash(msg string, d time.Duration)
}

// SystemClipboard is the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Copy writes the displayed text to cb and flashes a confirmation. Empty
// text is ignored and clipboard failures are swallowed. It reports whether
// the text was copied.
func Copy(cb Clipboard, flash Flasher, displayed string) bool {
	text := strings.TrimSpace(displayed)
	if text == "" {
		return false
	}
	if err := cb.WriteAll(text); err != nil {
		return false
	}
	if flash != nil {
		flash.Flash(CopiedMessage, FlashDuration)
	}
	return true
}

// Download serves the Q&A section of raw as a plain-text attachment. It
// writes nothing and returns false when there is nothing to download.
func Download(w http.ResponseWriter, raw string) bool {
	text := qa.ExtractPlain(raw)
	if text == "" {
		return false
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", FileName))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
	return true
}

// WriteFile saves the Q&A section of raw to dir/repo-qa.txt and returns the
// path. It returns "" and no error when there is nothing to save.
func WriteFile(dir, raw string) (string, error) {
	text := qa.ExtractPlain(raw)
	if text == "" {
		return "", nil
	}

	tmp, err := os.CreateTemp(dir, ".repo-qa-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", FileName, err)
	}

	dest := filepath.Join(dir, FileName)
	if err := os.Rename(tmpName, dest); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", FileName, err)
	}
	return dest, nil
}
