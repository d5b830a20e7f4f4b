// Package decl extracts top-level declarations from parsed Go files.
//
// The checker itself never walks a syntax tree; it consumes the flat,
// source-ordered []Declaration produced here. Parsing is done by the
// standard library (go/parser with comments retained), so this package is
// the only place that knows about go/ast shapes.
package decl

import (
	"go/ast"
	"go/token"

	"fortio.org/safecast"

	"doctag/internal/source"
)

// Declaration is one syntactic unit a rule can be checked against.
type Declaration struct {
	Kind Kind
	Name string
	Line uint32 // 1-based line of the declaration start
	Col  uint32 // 1-based column of the declaration start
	Span source.Span // span of the declaration's name
}

// Collect returns the declarations of f whose kind is in kinds, in source
// order. Each declaration appears exactly once. Grouped specs
// (`type (...)`, `const (...)`, `var (...)`) yield one Declaration per
// spec, positioned at the spec; ungrouped ones are positioned at the
// keyword so a comment directly above the keyword is found.
func Collect(fset *token.FileSet, f *ast.File, fileID source.FileID, kinds KindSet) []Declaration {
	var out []Declaration

	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			kind := KindFunc
			if d.Recv != nil {
				kind = KindMethod
			}
			if !kinds.Has(kind) {
				continue
			}
			out = append(out, makeDecl(fset, fileID, kind, d.Name, d.Pos()))

		case *ast.GenDecl:
			grouped := d.Lparen.IsValid()
			for _, spec := range d.Specs {
				switch spec := spec.(type) {
				case *ast.TypeSpec:
					kind := typeKind(spec)
					if !kinds.Has(kind) {
						continue
					}
					pos := d.Pos()
					if grouped {
						pos = spec.Pos()
					}
					out = append(out, makeDecl(fset, fileID, kind, spec.Name, pos))

				case *ast.ValueSpec:
					kind := KindConst
					if d.Tok == token.VAR {
						kind = KindVar
					}
					if !kinds.Has(kind) || len(spec.Names) == 0 {
						continue
					}
					pos := d.Pos()
					if grouped {
						pos = spec.Pos()
					}
					out = append(out, makeDecl(fset, fileID, kind, spec.Names[0], pos))
				}
			}
		}
	}

	return out
}

func typeKind(spec *ast.TypeSpec) Kind {
	switch spec.Type.(type) {
	case *ast.StructType:
		return KindStruct
	case *ast.InterfaceType:
		return KindInterface
	default:
		return KindTypedef
	}
}

func makeDecl(fset *token.FileSet, fileID source.FileID, kind Kind, name *ast.Ident, pos token.Pos) Declaration {
	p := fset.Position(pos)
	line, err := safecast.Conv[uint32](p.Line)
	if err != nil {
		panic(err)
	}
	col, err := safecast.Conv[uint32](p.Column)
	if err != nil {
		panic(err)
	}
	nameStart, err := safecast.Conv[uint32](fset.Position(name.Pos()).Offset)
	if err != nil {
		panic(err)
	}
	nameEnd, err := safecast.Conv[uint32](fset.Position(name.End()).Offset)
	if err != nil {
		panic(err)
	}
	return Declaration{
		Kind: kind,
		Name: name.Name,
		Line: line,
		Col:  col,
		Span: source.Span{File: fileID, Start: nameStart, End: nameEnd},
	}
}
