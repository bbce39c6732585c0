package response

// CoursesResponse is one page of /api/courses
type CoursesResponse struct {
	Courses []struct {
		ID          ID     `json:"id"`
		Slug        string `json:"slug"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Difficulty  string `json:"difficulty_level"`
		Link        string `json:"link"`
	} `json:"courses"`
	Metadata struct {
		Page       int `json:"page"`
		Limit      int `json:"limit"`
		TotalPages int `json:"total_pages"`
		Total      int `json:"total"`
	} `json:"metadata"`
}
