package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityOrder(t *testing.T) {
	order := []Severity{SeverityInformal, SeverityGas, SeverityLow, SeverityMedium, SeverityHigh}
	for i := 1; i < len(order); i++ {
		assert.True(t, SeverityGTE(order[i], order[i-1]), "%s >= %s", order[i], order[i-1])
		assert.False(t, SeverityGTE(order[i-1], order[i]), "%s < %s", order[i-1], order[i])
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
		ok   bool
	}{
		{"high", SeverityHigh, true},
		{" Medium ", SeverityMedium, true},
		{"GAS", SeverityGas, true},
		{"info", SeverityInformal, true},
		{"critical", SeverityInformal, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := LookupSeverity(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, ParseSeverity(tt.in))
		})
	}
}

func TestSeverityJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		S Severity `json:"s"`
	}{SeverityGas})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"gas"}`, string(b))

	var out struct {
		S Severity `json:"s"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"s":"low"}`), &out))
	assert.Equal(t, SeverityLow, out.S)
	assert.Error(t, json.Unmarshal([]byte(`{"s":"bogus"}`), &out))
}

func TestAllFindingsFlatten(t *testing.T) {
	all := AllFindings{
		"b": {{Finding: Finding{Module: "b", Code: 1}}},
		"a": {{Finding: Finding{Module: "a", Code: 0}}, {Finding: Finding{Module: "a", Code: 2}}},
		"c": {},
	}
	assert.Equal(t, []string{"a", "b", "c"}, all.Modules())
	assert.Equal(t, 3, all.Count())
	flat := all.Flatten()
	require.Len(t, flat, 3)
	assert.Equal(t, "a", flat[0].Module)
	assert.Equal(t, 2, flat[1].Code)
	assert.Equal(t, "b", flat[2].Module)
}

func TestErrorCodes(t *testing.T) {
	base := NewError(CodeMissingData, "artifact has no syntax tree").WithContext(CtxArtifact, "Bank")
	wrapped := fmt.Errorf("traverse: %w", base)

	assert.True(t, IsCode(wrapped, CodeMissingData))
	assert.False(t, IsCode(wrapped, CodeConfiguration))
	assert.True(t, IsFatal(wrapped))
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(NewError(CodeDegradedInput, "unreadable")))
	assert.Equal(t, "[MISSING_DATA] artifact has no syntax tree map[artifact:Bank]", base.Error())

	cause := errors.New("boom")
	w := WrapError(cause, CodeConfiguration, "bad root")
	assert.ErrorIs(t, w, cause)
	assert.Equal(t, "[CONFIGURATION] bad root: boom", w.Error())
}
