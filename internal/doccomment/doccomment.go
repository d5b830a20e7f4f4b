// Package doccomment indexes the comment blocks of a parsed file and
// answers "which block immediately precedes this line". The tag checker
// treats a block as an opaque ordered list of physical lines; nothing
// here interprets comment structure.
package doccomment

import (
	"go/ast"
	"go/token"
	"strings"

	"fortio.org/safecast"

	"doctag/internal/source"
)

// Comment is one documentation block: the raw physical lines it spans,
// comment markers included, plus its 1-based line range. A block
// written as `/* ... */` across three lines yields three entries in
// Lines; a run of `//` lines yields one entry per line.
type Comment struct {
	Lines []string
	Start uint32
	End   uint32
}

// Index answers nearest-preceding-comment queries for a single file.
type Index struct {
	byEnd map[uint32]*Comment
	file  *source.File
}

// Build collects the comment groups of f into an Index. Line text is
// taken from file so the checker sees exactly what is in the source,
// not go/ast's stripped comment text.
func Build(fset *token.FileSet, f *ast.File, file *source.File) *Index {
	ix := &Index{
		byEnd: make(map[uint32]*Comment, len(f.Comments)),
		file:  file,
	}

	for _, group := range f.Comments {
		startLine, err := safecast.Conv[uint32](fset.Position(group.Pos()).Line)
		if err != nil {
			panic(err)
		}
		endLine, err := safecast.Conv[uint32](fset.Position(group.End() - 1).Line)
		if err != nil {
			panic(err)
		}

		// A comment trailing code is not documentation. Drop that first
		// line so `x := 1 // note` above a declaration does not pass as
		// its doc block.
		firstCol := fset.Position(group.Pos()).Column
		if firstCol > 1 {
			prefix := ix.file.GetLine(startLine)
			if firstCol-1 < len(prefix) {
				prefix = prefix[:firstCol-1]
			}
			if strings.TrimSpace(prefix) != "" {
				startLine++
			}
		}
		if startLine > endLine {
			continue
		}

		lines := make([]string, 0, endLine-startLine+1)
		for l := startLine; l <= endLine; l++ {
			lines = append(lines, file.GetLine(l))
		}

		ix.byEnd[endLine] = &Comment{
			Lines: lines,
			Start: startLine,
			End:   endLine,
		}
	}

	return ix
}

// Before returns the comment block nearest above the given 1-based
// line, skipping blank lines between the block and the line. The block
// must end strictly before the line; a block further up, separated only
// by blank lines, still counts.
func (ix *Index) Before(line uint32) (*Comment, bool) {
	for l := line - 1; l > 0; l-- {
		if c, ok := ix.byEnd[l]; ok {
			return c, true
		}
		if strings.TrimSpace(ix.file.GetLine(l)) != "" {
			return nil, false
		}
	}
	return nil, false
}
