package ui

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
)

type courseSelectItem struct {
	kodekloud.CourseSummary
	Done     bool
	Selected bool
}

// CourseSelect lets the user pick one or more courses. Picking a course
// toggles it; the first item finishes the selection.
func CourseSelect(courses []kodekloud.CourseSummary) ([]kodekloud.CourseSummary, error) {
	items := make([]*courseSelectItem, 0, len(courses)+1)
	items = append(items, &courseSelectItem{
		CourseSummary: kodekloud.CourseSummary{Title: "Start download"},
		Done:          true,
	})
	for _, c := range courses {
		items = append(items, &courseSelectItem{CourseSummary: c})
	}
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "{{ `>` | red }} {{if .Selected}}[x]{{else if not .Done}}[ ]{{end}} {{ .Title | red }}",
		Inactive: "{{if .Done}} {{ .Title | green }} {{else}} {{if .Selected}}[x]{{else}}[ ]{{end}} {{ .Title }} {{end}}",
	}

	cursor := 0
	for {
		prompt := promptui.Select{
			Label:        fmt.Sprintf("Select courses (%d selected)", countSelected(items)),
			Items:        items,
			Templates:    templates,
			Size:         20,
			HideSelected: true,
			CursorPos:    cursor,
			Searcher: func(input string, index int) bool {
				return strings.Contains(strings.ToLower(items[index].Title), strings.ToLower(input))
			},
			Stdout: NoBellStdout,
		}
		index, _, err := prompt.Run()
		if err != nil {
			return nil, err
		}
		if items[index].Done {
			break
		}
		items[index].Selected = !items[index].Selected
		cursor = index
	}

	var selected []kodekloud.CourseSummary
	for _, it := range items {
		if it.Selected {
			selected = append(selected, it.CourseSummary)
		}
	}
	return selected, nil
}

func countSelected(items []*courseSelectItem) int {
	n := 0
	for _, it := range items {
		if it.Selected {
			n++
		}
	}
	return n
}
