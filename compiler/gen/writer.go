package gen

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"
)

// writeFile renders f, formats it with goimports and writes it under the
// target directory. A file that fails to format is written next to the
// target with an .error suffix for inspection.
func (g *Graph) writeFile(f *jen.File, name string) error {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return NewGenerationError("render", name, "", err)
	}
	path := filepath.Join(g.Target, name)
	formatted, err := imports.Process(path, buf.Bytes(), nil)
	if err != nil {
		// Already failing; the debug copy is best effort.
		_ = os.WriteFile(path+".error", buf.Bytes(), 0o644)
		return NewGenerationError("format", name, "unformatted output written to "+name+".error", err)
	}
	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return NewGenerationError("write", name, "", err)
	}
	return nil
}

// newFile creates a new Jennifer file with the header comment.
func (g *Graph) newFile() *jen.File {
	f := jen.NewFile(g.Package)
	if g.Header != "" {
		f.HeaderComment(g.Header)
	}
	return f
}
