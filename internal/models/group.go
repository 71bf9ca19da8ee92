package models

// Group maps a user-chosen name to the roll numbers it aggregates, scoped
// to the campus the rolls belong to.
type Group struct {
	Name        string   `json:"name"`
	RollNumbers []string `json:"rollNumbers"`
	Campus      string   `json:"campus"`
}
