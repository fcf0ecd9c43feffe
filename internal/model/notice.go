package model

// RawNotice is an unprocessed broadcast record as stored by the data source.
// Connectors produce it; the engine treats it as read-only input.
type RawNotice struct {
	ID               string           `json:"id,omitempty" bson:"_id,omitempty"`
	Category         string           `json:"category" bson:"category"`
	FormattedMessage string           `json:"formatted_message" bson:"formatted_message"`
	Content          string           `json:"content,omitempty" bson:"content,omitempty"`
	Title            string           `json:"title,omitempty" bson:"title,omitempty"`
	Author           string           `json:"author,omitempty" bson:"author,omitempty"`
	CreatedAt        string           `json:"createdAt,omitempty" bson:"createdAt,omitempty"` // saved-at
	TimeSent         string           `json:"time_sent,omitempty" bson:"time_sent,omitempty"`
	Roster           []ShortlistEntry `json:"shortlisted_students,omitempty" bson:"shortlisted_students,omitempty"`
	Source           string           `json:"-" bson:"-"` // provider name, set by the connector
}

// Message returns the formatted message, falling back to the plain content.
func (n RawNotice) Message() string {
	if n.FormattedMessage != "" {
		return n.FormattedMessage
	}
	return n.Content
}

// Malformed reports whether the record is missing both its message and its
// category, the only shape the read path refuses.
func (n RawNotice) Malformed() bool {
	return n.FormattedMessage == "" && n.Content == "" && n.Category == ""
}

// ShortlistEntry is one shortlisted student. EnrollmentNumber is the key.
type ShortlistEntry struct {
	Name             string `json:"name" bson:"name"`
	EnrollmentNumber string `json:"enrollment_number" bson:"enrollment_number"`
	Email            string `json:"email,omitempty" bson:"email,omitempty"`
	Venue            string `json:"venue,omitempty" bson:"venue,omitempty"`
}
