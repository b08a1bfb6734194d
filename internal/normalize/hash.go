package normalize

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gyeh/billcheck/internal/model"
)

// FileHash computes the hex-encoded SHA-256 of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for hash: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// CaseFingerprint computes a stable SHA-256 over the analyzable content of a
// case. Two cases with the same fingerprint produce the same detections.
// Struct fields marshal in declaration order and maps in sorted key order,
// so the encoding is canonical.
func CaseFingerprint(c *model.Case) (string, error) {
	canonical := struct {
		Artifacts     []model.DocumentArtifact `json:"a"`
		Meta          []model.DocumentMeta     `json:"m"`
		Lines         []model.LineItem         `json:"l"`
		Benefits      *model.BenefitsContext   `json:"b"`
		Narrative     model.Narrative          `json:"n"`
		ManualMatches map[string]string        `json:"mm"`
	}{c.Artifacts, c.Meta, c.LineItems, c.Benefits, c.Narrative, c.ManualMatches}

	data, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("marshal case for fingerprint: %w", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum[:]), nil
}
