package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/xab-mack/solhunt/internal/model"
)

// Fingerprint computes a stable hash for a finding key. The snippet is
// whitespace-normalized so re-indentation does not invalidate a baseline.
func Fingerprint(module string, code int, file string, line int, snippet string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%s|%d|%s", module, code, file, line, strings.Join(strings.Fields(snippet), " "))
	return hex.EncodeToString(h.Sum(nil))
}

func FindingFingerprint(f model.MetaFinding) string {
	return Fingerprint(f.Module, f.Code, f.Meta.File, f.Meta.Line, f.Meta.Snippet)
}
