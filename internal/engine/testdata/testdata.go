package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/crimson-sun/bulletin/internal/model"
)

//go:embed corpus.json
var corpusJSON []byte

// CorpusEntry is a labeled notice for extraction validation.
type CorpusEntry struct {
	Description        string          `json:"description"`
	Notice             model.RawNotice `json:"notice"`
	ExpectedCategory   string          `json:"expected_category"`
	ExpectedCompany    string          `json:"expected_company"`
	ExpectedCourses    []string        `json:"expected_courses"`
	ExpectedRosterSize int             `json:"expected_roster_size"`
	ExpectedHidden     bool            `json:"expected_hidden"`
}

// LoadCorpus parses the embedded corpus.json and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.json: %w", err)
	}
	return entries, nil
}
