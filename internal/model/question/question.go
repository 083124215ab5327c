package question

// Input describes one form field a phase question asks for.
type Input struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Unit    string   `json:"unit,omitempty"`
	Options []string `json:"options,omitempty"`
}

// Question is one scored prompt within a phase.
type Question struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Inputs      []Input `json:"inputs"`
}

// PhaseContent is the static payload served for one phase.
type PhaseContent struct {
	VideoURL  string     `json:"videoUrl"`
	Questions []Question `json:"questions"`
}
