package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bank = `pragma solidity 0.7.0;

contract Bank {
    mapping(address => uint256) bal;

    function deposit() external payable {
        bal[msg.sender] += msg.value;
    }
}`

func TestSnippetSpan_WholeLines(t *testing.T) {
	ix, err := NewIndex([]byte(bank))
	require.NoError(t, err)

	off := strings.Index(bank, "+=")
	assert.Equal(t, "        bal[msg.sender] += msg.value;", ix.SnippetSpan(off, 2))

	fn := strings.Index(bank, "function")
	end := strings.Index(bank, "    }\n}") + 5
	got := ix.SnippetSpan(fn, end-fn)
	assert.Equal(t, "    function deposit() external payable {\n        bal[msg.sender] += msg.value;\n    }", got)
}

func TestSnippet_Context(t *testing.T) {
	ix, err := NewIndex([]byte(bank))
	require.NoError(t, err)
	off := strings.Index(bank, "bal[msg.sender]")

	assert.Equal(t, "    function deposit() external payable {", ix.SnippetBefore(off, 1))
	assert.Equal(t, "    }", ix.SnippetAfter(off, 10, 1))
	assert.Equal(t,
		"    function deposit() external payable {\n        bal[msg.sender] += msg.value;\n    }",
		ix.Snippet(off, 10, 1))
	assert.Equal(t, "        bal[msg.sender] += msg.value;", ix.Snippet(off, 10, 0))
}

func TestSnippet_FileEdges(t *testing.T) {
	ix, err := NewIndex([]byte(bank))
	require.NoError(t, err)

	assert.Empty(t, ix.SnippetBefore(0, 3))
	assert.Equal(t, "pragma solidity 0.7.0;", ix.SnippetSpan(0, 22))

	last := strings.LastIndex(bank, "}")
	assert.Equal(t, "}", ix.SnippetSpan(last, 1))
	assert.Empty(t, ix.SnippetAfter(last, 1, 2))
	assert.Empty(t, ix.SnippetSpan(len(bank)+4, 1))
}

func TestSnippet_CRLFTrimmed(t *testing.T) {
	content := "a\r\nbb\r\nc\r\n"
	ix, err := NewIndex([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, "bb", ix.SnippetSpan(3, 2))
	assert.Equal(t, "a", ix.SnippetBefore(3, 1))
	assert.Equal(t, "c", ix.SnippetAfter(3, 2, 5))
}

func TestFingerprint_StableUnderWhitespace(t *testing.T) {
	a := Fingerprint("overflow", 1, "src/Bank.sol", 7, "bal[msg.sender]  +=   msg.value;")
	b := Fingerprint("overflow", 1, "src/Bank.sol", 7, "   bal[msg.sender] += msg.value;")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Fingerprint("overflow", 2, "src/Bank.sol", 7, "bal[msg.sender] += msg.value;"))
}
