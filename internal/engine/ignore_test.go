package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xab-mack/solhunt/internal/config"
	"github.com/xab-mack/solhunt/internal/model"
)

func TestMarkerCovers(t *testing.T) {
	tests := []struct {
		line   string
		module string
		code   int
		want   bool
	}{
		{"x += 1; // solhunt:ignore", "overflow", 1, true},
		{"// solhunt:ignore overflow", "overflow", 2, true},
		{"// solhunt:ignore overflow:1", "overflow", 1, true},
		{"// solhunt:ignore overflow:1", "overflow", 2, false},
		{"// solhunt:ignore events, overflow:2", "overflow", 2, true},
		{"// solhunt:ignore events reason=\"audited\"", "overflow", 2, false},
		{"/* solhunt:ignore tx-origin */", "tx-origin", 0, true},
		{"// solhunt:ignored overflow", "overflow", 1, false},
		{"x += 1;", "overflow", 1, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, markerCovers(tt.line, tt.module, tt.code), tt.line)
	}
}

func TestApplyIgnores(t *testing.T) {
	src := map[string]string{
		"src/A.sol": "pragma solidity 0.7.0;\n// solhunt:ignore overflow:1\nx += 1;\ny -= 1;\n",
	}
	source := func(p string) ([]byte, bool) {
		s, ok := src[p]
		return []byte(s), ok
	}
	code := 2
	rules := []config.IgnoreRule{{Module: "events", Path: "src/mocks/**"}, {Module: "overflow", Code: &code, Path: "src/B.sol"}}
	mf := func(module string, code int, file string, line int) model.MetaFinding {
		return model.MetaFinding{Finding: model.Finding{Module: module, Code: code}, Meta: model.Meta{File: file, Line: line}}
	}
	all := model.AllFindings{
		"overflow": {
			mf("overflow", 0, "src/A.sol", 1),
			mf("overflow", 1, "src/A.sol", 3),
			mf("overflow", 2, "src/A.sol", 4),
			mf("overflow", 2, "src/B.sol", 9),
		},
		"events": {
			mf("events", 0, "src/mocks/M.sol", 3),
			mf("events", 0, "src/missing.sol", 3),
		},
		"loops": {},
	}

	got, n := applyIgnores(all, rules, source)
	assert.Equal(t, 3, n)
	assert.Equal(t, []model.MetaFinding{mf("overflow", 0, "src/A.sol", 1), mf("overflow", 2, "src/A.sol", 4)}, got["overflow"])
	assert.Equal(t, []model.MetaFinding{mf("events", 0, "src/missing.sol", 3)}, got["events"])
	assert.Contains(t, got, "loops")
}
