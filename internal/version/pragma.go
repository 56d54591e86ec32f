// Package version resolves solidity compiler-version pragmas into ranges.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/xab-mack/solhunt/internal/model"
)

const languageTag = "solidity"

var (
	numericToken = regexp.MustCompile(`^\.?\d+(\.\d+)*$`)
	versionText  = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?$`)
	opPrefixed   = regexp.MustCompile(`^(\^|~|>=|<=|>|<|=)(\d.*)$`)
	bannerText   = regexp.MustCompile(`(\d+\.\d+\.\d+)`)
)

var operators = map[string]bool{
	"^": true, "~": true, "=": true,
	">=": true, ">": true, "<=": true, "<": true,
}

// Range is a disjunction of constraint sets. A version matches when every
// constraint of at least one set accepts it.
type Range struct {
	alts []goversion.Constraints
}

func (r Range) Matches(v *goversion.Version) bool {
	if v == nil {
		return false
	}
	for _, c := range r.alts {
		if c.Check(v) {
			return true
		}
	}
	return false
}

// Exact reports whether the range pins a single version.
func (r Range) Exact() bool {
	if len(r.alts) != 1 || len(r.alts[0]) != 1 {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(r.alts[0][0].String()), "=")
}

// Lowest returns the smallest version explicitly named by a lower bound or
// pin, or nil when every alternative is unbounded below.
func (r Range) Lowest() *goversion.Version {
	var low *goversion.Version
	for _, alt := range r.alts {
		for _, c := range alt {
			s := strings.TrimSpace(c.String())
			if !strings.HasPrefix(s, ">") && !strings.HasPrefix(s, "=") {
				continue
			}
			v, err := goversion.NewVersion(strings.TrimLeft(s, ">= "))
			if err != nil {
				continue
			}
			if low == nil || v.LessThan(low) {
				low = v
			}
		}
	}
	return low
}

func (r Range) String() string {
	parts := make([]string, len(r.alts))
	for i, c := range r.alts {
		parts[i] = c.String()
	}
	return strings.Join(parts, " || ")
}

type bound struct {
	op   string
	text string
	tok  string
}

// ParsePragma turns the literal tokens of a pragma directive, as emitted by
// solc (for example "solidity", "^", "0.8", ".4"), into a Range.
func ParsePragma(tokens []string) (Range, error) {
	if len(tokens) == 0 || tokens[0] != languageTag {
		tok := ""
		if len(tokens) > 0 {
			tok = tokens[0]
		}
		return Range{}, model.NewError(model.CodeConfiguration, "pragma is not a solidity version pragma").
			WithContext(model.CtxToken, tok)
	}

	var (
		groups [][]bound
		cur    []bound
		op     string
		text   strings.Builder
		first  string
	)
	flush := func() error {
		if text.Len() == 0 {
			if op != "" {
				return model.NewError(model.CodeConfiguration, "operator without version").WithContext(model.CtxToken, op)
			}
			return nil
		}
		cur = append(cur, bound{op: op, text: text.String(), tok: first})
		op, first = "", ""
		text.Reset()
		return nil
	}

	var split []string
	for _, tok := range tokens[1:] {
		tok = strings.TrimSpace(tok)
		if m := opPrefixed.FindStringSubmatch(tok); m != nil {
			split = append(split, m[1], m[2])
			continue
		}
		split = append(split, tok)
	}
	for _, tok := range split {
		switch {
		case tok == "":
			continue
		case tok == "||":
			if err := flush(); err != nil {
				return Range{}, err
			}
			groups = append(groups, cur)
			cur = nil
		case operators[tok]:
			if err := flush(); err != nil {
				return Range{}, err
			}
			op = tok
		case numericToken.MatchString(tok):
			if text.Len() > 0 && !strings.HasPrefix(tok, ".") {
				// "0.8.0 0.9.0" without operator: two bounds, the first exact
				if err := flush(); err != nil {
					return Range{}, err
				}
			}
			if first == "" {
				first = tok
			}
			text.WriteString(tok)
		default:
			return Range{}, model.NewError(model.CodeConfiguration, "malformed version token").
				WithContext(model.CtxToken, tok)
		}
	}
	if err := flush(); err != nil {
		return Range{}, err
	}
	groups = append(groups, cur)

	r := Range{}
	for _, g := range groups {
		if len(g) == 0 {
			return Range{}, model.NewError(model.CodeConfiguration, "empty version range").
				WithContext(model.CtxToken, strings.Join(tokens, " "))
		}
		var exprs []string
		for _, b := range g {
			e, err := expand(b)
			if err != nil {
				return Range{}, err
			}
			exprs = append(exprs, e...)
		}
		c, err := goversion.NewConstraint(strings.Join(exprs, ", "))
		if err != nil {
			return Range{}, model.WrapError(err, model.CodeConfiguration, "invalid version range").
				WithContext(model.CtxToken, strings.Join(exprs, ", "))
		}
		r.alts = append(r.alts, c)
	}
	return r, nil
}

func expand(b bound) ([]string, error) {
	m := versionText.FindStringSubmatch(b.text)
	if m == nil {
		return nil, model.NewError(model.CodeConfiguration, "malformed version token").
			WithContext(model.CtxToken, b.tok)
	}
	nums := [3]int{}
	for i := 0; i < 3; i++ {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return nil, model.WrapError(err, model.CodeConfiguration, "malformed version token").
				WithContext(model.CtxToken, b.tok)
		}
		nums[i] = n
	}
	v := fmt.Sprintf("%d.%d.%d", nums[0], nums[1], nums[2])
	switch b.op {
	case "", "=":
		return []string{"= " + v}, nil
	case "^", "~":
		return []string{">= " + v, fmt.Sprintf("< %d.%d.0", nums[0], nums[1]+1)}, nil
	default:
		return []string{b.op + " " + v}, nil
	}
}

// ParseCompilerVersion extracts X.Y.Z from strings such as
// "0.8.19+commit.7dd6d404" or the banner printed by solc --version.
func ParseCompilerVersion(s string) (*goversion.Version, error) {
	m := bannerText.FindString(s)
	if m == "" {
		return nil, model.NewError(model.CodeConfiguration, "no compiler version found").WithContext(model.CtxToken, s)
	}
	v, err := goversion.NewVersion(m)
	if err != nil {
		return nil, model.WrapError(err, model.CodeConfiguration, "invalid compiler version").WithContext(model.CtxToken, s)
	}
	return v, nil
}
