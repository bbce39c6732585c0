package response

// CourseDetailResponse is /api/courses/{slug}
type CourseDetailResponse struct {
	ID      ID     `json:"id"`
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Modules []struct {
		ID      ID       `json:"id"`
		Title   string   `json:"title"`
		Lessons []Lesson `json:"lessons"`
	} `json:"modules"`
}
