package plugins

import (
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const codeUninitializedPointer = 0

// solc rejects uninitialized storage pointers from 0.5.0 on.
var storagePointerCheck = goversion.Must(goversion.NewVersion("0.5.0"))

type uninitializedStorage struct{ catalog Catalog }

func newUninitializedStorage() *uninitializedStorage {
	return &uninitializedStorage{catalog: NewCatalog(map[int]Entry{
		codeUninitializedPointer: {
			Summary:     "Uninitialized storage pointer",
			Description: "A local storage variable declared without a value points at slot 0. Writing through it overwrites the first state variables of the contract. Declare it memory or assign it an existing storage location.",
			Severity:    model.SeverityHigh,
			References:  []string{"SWC-109"},
		},
	})}
}

func (m *uninitializedStorage) Name() string        { return "uninitialized-storage" }
func (m *uninitializedStorage) Catalog() Catalog    { return m.catalog }
func (m *uninitializedStorage) NewVisitor() Visitor { return uninitializedStorageVisitor{} }

type uninitializedStorageVisitor struct{}

func isStoragePointer(d *solidity.VariableDeclaration) bool {
	return d.StorageLocation == "storage" || strings.HasSuffix(d.TypeString, " storage pointer")
}

func (uninitializedStorageVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	if v := c.Version.Version; v != nil && !v.LessThan(storagePointerCheck) {
		return SkipChildren, nil
	}
	stmt, ok := n.(*solidity.VariableDeclarationStatement)
	if !ok || stmt.InitialValue != nil {
		return Continue, nil
	}
	for _, d := range stmt.Declarations {
		if d, ok := d.(*solidity.VariableDeclaration); ok && isStoragePointer(d) {
			if err := c.PushWithComment(codeUninitializedPointer, SpanOf(d), d.Name); err != nil {
				return SkipChildren, err
			}
		}
	}
	return SkipChildren, nil
}
