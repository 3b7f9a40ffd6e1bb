package domain

type Candidate struct {
	Name   string `json:"name"`
	Campus Campus `json:"campus"`
}
