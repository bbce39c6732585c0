package ui

import (
	"errors"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
)

// CourseURLInput asks for a course url and returns its slug
func CourseURLInput() (string, error) {
	prompt := promptui.Prompt{
		Label: "Course url",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("course url cannot be empty")
			}
			_, err := kodekloud.ParseCourseURL(strings.TrimSpace(s))
			return err
		},
		HideEntered: true,
		Stdout:      NoBellStdout,
	}
	s, err := prompt.Run()
	if err != nil {
		return "", err
	}
	// ignore, because checked before
	slug, _ := kodekloud.ParseCourseURL(strings.TrimSpace(s))
	return slug, nil
}
