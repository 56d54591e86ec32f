package engine

import "github.com/xab-mack/solhunt/internal/model"

// filterFindings keeps the findings accepted by keep and reports how many
// were dropped. Every module key survives, even when its list empties.
func filterFindings(all model.AllFindings, keep func(model.MetaFinding) bool) (model.AllFindings, int) {
	out := make(model.AllFindings, len(all))
	dropped := 0
	for name, fs := range all {
		kept := make([]model.MetaFinding, 0, len(fs))
		for _, f := range fs {
			if keep(f) {
				kept = append(kept, f)
			} else {
				dropped++
			}
		}
		out[name] = kept
	}
	return out, dropped
}

// filterBySeverity removes findings below threshold.
func filterBySeverity(all model.AllFindings, threshold model.Severity) (model.AllFindings, int) {
	return filterFindings(all, func(f model.MetaFinding) bool {
		return model.SeverityGTE(f.Severity, threshold)
	})
}
