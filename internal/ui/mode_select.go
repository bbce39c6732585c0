package ui

import (
	"github.com/manifoldco/promptui"
)

// Mode is how the user picks courses when no url was given
type Mode int

const (
	// ModeBrowse lists every course
	ModeBrowse Mode = iota
	// ModeURL asks for a course url
	ModeURL
)

type modeSelectOption struct {
	Text string
	Mode Mode
}

// ModeSelect asks how to pick the courses to download
func ModeSelect() (Mode, error) {
	options := []modeSelectOption{
		{"Browse all courses", ModeBrowse},
		{"Enter a course url", ModeURL},
	}
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "{{ `>` | red }} {{ .Text | red }}",
		Inactive: "{{ .Text }}",
	}
	prompt := promptui.Select{
		Label:        "How do you want to choose courses",
		Items:        options,
		Templates:    templates,
		Size:         len(options),
		HideSelected: true,
		Stdout:       NoBellStdout,
	}
	index, _, err := prompt.Run()
	if err != nil {
		return 0, err
	}
	return options[index].Mode, nil
}
