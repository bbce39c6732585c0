package vimeo

// PlayerConfig is the subset of https://player.vimeo.com/video/{id}/config
// that carries downloadable renditions
type PlayerConfig struct {
	Request struct {
		Files struct {
			Progressive []Progressive `json:"progressive"`
		} `json:"files"`
		Expires   int64  `json:"expires"`
		Signature string `json:"signature"`
	} `json:"request"`
	Video struct {
		ID       int64  `json:"id"`
		Title    string `json:"title"`
		Duration int64  `json:"duration"`
	} `json:"video"`
	Message string `json:"message"`
}

// Progressive is one single-file rendition
type Progressive struct {
	Profile interface{} `json:"profile"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Mime    string      `json:"mime"`
	FPS     float64     `json:"fps"`
	URL     string      `json:"url"`
	CDN     string      `json:"cdn"`
	Quality string      `json:"quality"`
	ID      string      `json:"id"`
	Origin  string      `json:"origin"`
}
