package fsm

// State of the interactive course picker
type State int

const (
	StateSelectMode State = iota
	StateInputCourseURL
	StateSelectCourses
	StateDownload
)
