package mask

import "fmt"

// Item is one selected bank item ready for renumbering: its template, one
// answer per marker and an optional sub-alphabet key per marker.
type Item struct {
	Template  *Template
	Answers   []string
	GroupKeys []string
}

// Numbered is the renumbered exercise payload. Blank ids are globally
// fresh within the exercise, `<prefix>-<n>` with n starting at 1 and
// increasing in reading order across items.
type Numbered struct {
	Lines          []string
	IDs            [][]string // blank ids per item, marker order
	Expected       []string   // flat, blank order
	ExpectedNested [][]string // per item
	LetterGroups   map[string]string
}

// Renumber rewrites every marker of every item to an exercise-local blank
// id and collects the expected answers alongside. The number of blanks in
// the output always equals the total marker count of the input.
func Renumber(items []Item, prefix string) Numbered {
	out := Numbered{
		Lines:          make([]string, 0, len(items)),
		IDs:            make([][]string, 0, len(items)),
		Expected:       make([]string, 0, len(items)),
		ExpectedNested: make([][]string, 0, len(items)),
		LetterGroups:   make(map[string]string),
	}
	n := 0
	for _, it := range items {
		ids := make([]string, len(it.Template.markers))
		line := it.Template.render(func(i int, _ Marker) string {
			n++
			id := fmt.Sprintf("%s-%d", prefix, n)
			ids[i] = id
			if i < len(it.GroupKeys) && it.GroupKeys[i] != "" {
				out.LetterGroups[id] = it.GroupKeys[i]
			}
			return "*" + id + "*"
		})
		out.Lines = append(out.Lines, line)
		out.IDs = append(out.IDs, ids)
		out.ExpectedNested = append(out.ExpectedNested, it.Answers)
		out.Expected = append(out.Expected, it.Answers...)
	}
	return out
}
