package model

// NoticeView is the presentation view model composed from one RawNotice.
// It is recomputed on every read and never persisted as source of truth.
type NoticeView struct {
	ID          string                 `json:"id"`
	Category    string                 `json:"category"`
	Title       string                 `json:"title,omitempty"`
	Author      string                 `json:"author,omitempty"`
	Timestamp   string                 `json:"timestamp,omitempty"`
	Company     string                 `json:"company,omitempty"`
	Role        string                 `json:"role,omitempty"`
	CTC         string                 `json:"ctc,omitempty"`
	Location    string                 `json:"location,omitempty"`
	Deadline    string                 `json:"deadline,omitempty"`
	Summary     string                 `json:"summary,omitempty"`
	Body        string                 `json:"body,omitempty"`
	Eligibility []EligibilityCriterion `json:"eligibility,omitempty"`
	HiringSteps []string               `json:"hiring_steps,omitempty"`
	Roster      []ShortlistEntry       `json:"roster,omitempty"`
	Hidden      bool                   `json:"hidden,omitempty"`
	Count       int                    `json:"count,omitempty"` // repeated deliveries collapsed into this view
	Source      string                 `json:"source,omitempty"`
	Raw         string                 `json:"raw,omitempty"` // original message, kept at full verbosity
}
