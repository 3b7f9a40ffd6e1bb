package domain

// Vote is the authoritative ballot record. At most one live Vote
// exists per voter name.
type Vote struct {
	VoterName     string `json:"voter_name"`
	CandidateName string `json:"candidate_name"`
}
