package models

// GridCell is one rendered booking element lifted off the page: its visible
// text plus bounding geometry. Produced by the browser driver, consumed by
// column inference and slot extraction.
type GridCell struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Class  string  `json:"class"` // element class attribute, carries visitor markers
}
