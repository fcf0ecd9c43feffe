package model

// ParsedMessage is the segmenter's typed view of one announcement.
// Absent fields are empty, never inferred.
type ParsedMessage struct {
	Title          string
	Company        string
	Role           string
	CTC            string
	Location       string
	Deadline       string
	Body           string
	EligibilityRaw string
	HiringRaw      string
}

// CriterionKind tags the variant held by an EligibilityCriterion.
type CriterionKind string

const (
	CriterionCourses     CriterionKind = "courses"
	CriterionMarks       CriterionKind = "marks"
	CriterionRequirement CriterionKind = "requirement"
	CriterionGeneral     CriterionKind = "general"
)

// EligibilityCriterion is a tagged variant. Only the fields belonging to Kind
// are set:
//
//	courses:     Courses
//	marks:       Level, Value, Unit
//	requirement: Text
//	general:     Text
type EligibilityCriterion struct {
	Kind    CriterionKind `json:"kind"`
	Courses []string      `json:"courses,omitempty"`
	Level   string        `json:"level,omitempty"`
	Value   string        `json:"value,omitempty"`
	Unit    string        `json:"unit,omitempty"`
	Text    string        `json:"text,omitempty"`
}
