package engine

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/util"
)

type baseline struct {
	GeneratedAt  time.Time `json:"generatedAt"`
	Fingerprints []string  `json:"fingerprints"`

	set map[string]bool
}

// loadBaseline reads either the object written by writeBaseline or a bare
// array of fingerprints. An empty path yields an empty baseline.
func loadBaseline(fs afero.Fs, path string) (baseline, error) {
	var b baseline
	if path == "" {
		return b, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return b, model.WrapError(err, model.CodeConfiguration, "reading baseline").WithContext(model.CtxPath, path)
	}
	var fps []string
	if err := json.Unmarshal(data, &fps); err != nil {
		if err := json.Unmarshal(data, &b); err != nil {
			return b, model.WrapError(err, model.CodeConfiguration, "parsing baseline").WithContext(model.CtxPath, path)
		}
		fps = b.Fingerprints
	}
	b.set = make(map[string]bool, len(fps))
	for _, f := range fps {
		b.set[f] = true
	}
	return b, nil
}

func (b baseline) contains(f model.MetaFinding) bool {
	return b.set[util.FindingFingerprint(f)]
}

func filterByBaseline(all model.AllFindings, b baseline) (model.AllFindings, int) {
	if len(b.set) == 0 {
		return all, 0
	}
	return filterFindings(all, func(f model.MetaFinding) bool { return !b.contains(f) })
}

func writeBaseline(fs afero.Fs, path string, all model.AllFindings) error {
	if path == "" {
		return nil
	}
	seen := map[string]bool{}
	for _, f := range all.Flatten() {
		seen[util.FindingFingerprint(f)] = true
	}
	b := baseline{GeneratedAt: time.Now().UTC(), Fingerprints: make([]string, 0, len(seen))}
	for fp := range seen {
		b.Fingerprints = append(b.Fingerprints, fp)
	}
	sort.Strings(b.Fingerprints)
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, 0o644)
}
