package domain

// Campus partitions voters and candidates into independent electoral
// pools. A voter may only vote for a candidate on their own campus.
type Campus string

const (
	CampusMM Campus = "MM"
	CampusPD Campus = "PD"
)

type Voter struct {
	Token  string `json:"token"`
	Name   string `json:"name"`
	Class  string `json:"class"`
	Campus Campus `json:"campus"`
}
