package writetag

import "regexp"

// tagMatch records one line of a comment that contained the tag.
type tagMatch struct {
	line    int    // 0-based offset within the comment block
	content string // text of the line from the start of the captured group
}

// findTag searches every line of a comment block for the tag pattern.
// Matches are returned in ascending line order, one per matching line;
// a line that does not contain the tag contributes nothing. The search
// is a find, not a full-line match, so the tag may sit anywhere in the
// line (after comment markers, indentation, other prose).
func findTag(re *regexp.Regexp, lines []string) []tagMatch {
	var out []tagMatch
	for i, line := range lines {
		loc := re.FindStringSubmatchIndex(line)
		if loc == nil || loc[2] < 0 {
			continue
		}
		out = append(out, tagMatch{line: i, content: line[loc[2]:]})
	}
	return out
}
