package bulletin

// Notice is a stored broadcast as handed to Process.
type Notice struct {
	ID       string
	Category string
	Message  string // formatted message; Content is used when empty
	Content  string
	Title    string
	Author   string
	SavedAt  string // ISO-8601 saved-at timestamp, optional
	SentAt   string // ISO-8601 sent-at timestamp, optional
	Roster   []Student
}

// Student is one shortlisted student. EnrollmentNumber identifies the student.
type Student struct {
	Name             string `json:"name"`
	EnrollmentNumber string `json:"enrollment_number"`
	Email            string `json:"email,omitempty"`
	Venue            string `json:"venue,omitempty"`
}
