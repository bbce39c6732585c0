package response

// Lesson is a lesson as it appears both in the course tree and in
// /api/lessons/{id}. The tree only fills id, title and type.
type Lesson struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	VideoURL    string `json:"video_url"`
	DocumentURL string `json:"document_url"`
	LabURL      string `json:"lab_url"`
	Content     string `json:"content"`
	Resources   []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
		Type string `json:"type"`
	} `json:"resources"`
	// Qualities optionally lists the renditions offered for a direct video, keyed by tier
	Qualities map[string]string `json:"video_qualities"`
}
