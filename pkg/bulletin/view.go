package bulletin

// View is the structured form of one notice.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type View struct {
	ID          string      `json:"id"`
	Category    string      `json:"category"`
	Title       string      `json:"title,omitempty"`
	Author      string      `json:"author,omitempty"`
	Timestamp   string      `json:"timestamp,omitempty"`
	Company     string      `json:"company,omitempty"`
	Role        string      `json:"role,omitempty"`
	CTC         string      `json:"ctc,omitempty"`
	Location    string      `json:"location,omitempty"`
	Deadline    string      `json:"deadline,omitempty"`
	Summary     string      `json:"summary,omitempty"`
	Body        string      `json:"body,omitempty"`
	Eligibility []Criterion `json:"eligibility,omitempty"`
	HiringSteps []string    `json:"hiring_steps,omitempty"`
	Roster      []Student   `json:"roster,omitempty"`
	Hidden      bool        `json:"hidden,omitempty"` // low-value bot announcement
	Raw         string      `json:"raw,omitempty"`    // original message at full verbosity
}

// Criterion is one eligibility requirement. Kind is "courses", "marks",
// "requirement" or "general"; only the fields of that kind are set.
type Criterion struct {
	Kind    string   `json:"kind"`
	Courses []string `json:"courses,omitempty"`
	Level   string   `json:"level,omitempty"`
	Value   string   `json:"value,omitempty"`
	Unit    string   `json:"unit,omitempty"`
	Text    string   `json:"text,omitempty"`
}
