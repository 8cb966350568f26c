package model

// SkillRef identifies one skill in the canonical library. The ID is assigned
// once and survives directory renames; Name and Dir reflect the current state
// of the library on disk.
type SkillRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Dir         string `json:"dir"`
}
