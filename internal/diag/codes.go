package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Configuration errors. Fatal: scanning never starts with a broken rule.
	ConfBadTagPattern    Code = 1001
	ConfBadFormatPattern Code = 1002
	ConfUnknownDeclKind  Code = 1003
	ConfBadSeverity      Code = 1004

	// Tag check outcomes. These are the product of a scan, not failures.
	TagMissing   Code = 2001
	TagWritten   Code = 2002
	TagBadFormat Code = 2003

	// Per-file parse failures.
	ParseError Code = 3001

	// I/O
	IOLoadFileError Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown",
	ConfBadTagPattern:    "Tag name does not compile into a pattern",
	ConfBadFormatPattern: "Tag format does not compile into a pattern",
	ConfUnknownDeclKind:  "Unknown declaration kind in configuration",
	ConfBadSeverity:      "Unknown severity name in configuration",
	TagMissing:           "Documentation comment is missing the required tag",
	TagWritten:           "Required tag found",
	TagBadFormat:         "Tag content does not match the required format",
	ParseError:           "Source file failed to parse",
	IOLoadFileError:      "Failed to load file",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("TAG%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
