// Package eligibility turns a raw eligibility block into typed criteria.
package eligibility

import (
	"regexp"
	"strings"

	"github.com/crimson-sun/bulletin/internal/engine/markup"
	"github.com/crimson-sun/bulletin/internal/model"
)

// NoBacklogs is the fixed text of the backlog requirement.
const NoBacklogs = "No backlogs"

var (
	coursesPattern = regexp.MustCompile(`(?i)\b(?:courses?|branch(?:es)?)\b[^:]{0,30}:\s*(.*)$`)
	marksKeyword   = regexp.MustCompile(`(?i)\b(?:cgpa|marks|percentage)\b`)
	levelPattern   = regexp.MustCompile(`(?i)\b(10th|12th|ssc|hsc|graduation|ug|pg|b\.?\s?tech|m\.?\s?tech|diploma|mca|bca|degree)\b`)
	numberPattern  = regexp.MustCompile(`\d+(?:\.\d+)?\s*%?`)
	backlogPattern = regexp.MustCompile(`(?i)\bno\s+(?:active\s+)?backlogs?\b`)
)

// Format classifies each non-empty line of block. Lines are tried as a course
// list, a marks threshold, the backlog requirement and finally general text.
func Format(block string) []model.EligibilityCriterion {
	var out []model.EligibilityCriterion
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(markup.StripEmphasis(line))
		if line == "" {
			continue
		}
		if c, ok := parseLine(line); ok {
			out = append(out, c)
		}
	}
	return out
}

func parseLine(line string) (model.EligibilityCriterion, bool) {
	if courses := parseCourses(line); len(courses) > 0 {
		return model.EligibilityCriterion{Kind: model.CriterionCourses, Courses: courses}, true
	}
	if c, ok := parseMarks(line); ok {
		return c, true
	}
	if backlogPattern.MatchString(line) {
		return model.EligibilityCriterion{Kind: model.CriterionRequirement, Text: NoBacklogs}, true
	}
	if markup.IsBulletOnly(line) {
		return model.EligibilityCriterion{}, false
	}
	text := markup.StripBullet(line)
	if text == "" {
		return model.EligibilityCriterion{}, false
	}
	return model.EligibilityCriterion{Kind: model.CriterionGeneral, Text: text}, true
}

func parseCourses(line string) []string {
	m := coursesPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	var courses []string
	for _, part := range strings.Split(m[1], ",") {
		part = strings.Trim(strings.TrimSpace(part), ".;")
		if part != "" {
			courses = append(courses, part)
		}
	}
	return courses
}

func parseMarks(line string) (model.EligibilityCriterion, bool) {
	if !marksKeyword.MatchString(line) {
		return model.EligibilityCriterion{}, false
	}
	level := levelPattern.FindString(line)
	if level == "" {
		return model.EligibilityCriterion{}, false
	}
	// Level tokens carry digits of their own ("10th", "12th").
	num := numberPattern.FindString(levelPattern.ReplaceAllString(line, " "))
	if num == "" {
		return model.EligibilityCriterion{}, false
	}

	value := strings.TrimSpace(num)
	unit := "%"
	if !strings.HasSuffix(value, "%") && strings.Contains(strings.ToLower(line), "cgpa") {
		unit = "CGPA"
	}
	return model.EligibilityCriterion{
		Kind:  model.CriterionMarks,
		Level: canonicalLevel(level),
		Value: strings.TrimSpace(strings.TrimSuffix(value, "%")),
		Unit:  unit,
	}, true
}

func canonicalLevel(level string) string {
	l := strings.ToLower(strings.Join(strings.Fields(level), ""))
	switch l {
	case "btech", "b.tech":
		return "B.Tech"
	case "mtech", "m.tech":
		return "M.Tech"
	case "ssc", "hsc", "ug", "pg", "mca", "bca":
		return strings.ToUpper(l)
	}
	return l
}
