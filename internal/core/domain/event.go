package domain

// EntityKind names a backing store table the cache mirrors.
type EntityKind string

const (
	KindVoter     EntityKind = "voter"
	KindAdmin     EntityKind = "admin"
	KindCandidate EntityKind = "candidate"
	KindVote      EntityKind = "vote"
)

type ChangeAction string

const (
	ActionCreate ChangeAction = "create"
	ActionUpdate ChangeAction = "update"
	ActionDelete ChangeAction = "delete"
)

// ChangeNotification is one pushed event from the backing store's
// change feed. Vote carries the affected record for vote notifications
// only; voter and admin refreshes are wholesale and ignore it.
type ChangeNotification struct {
	Action ChangeAction
	Vote   Vote
}

// VoteEvent is the broadcast payload pushed to live observers.
type VoteEvent struct {
	Action        ChangeAction
	VoterName     string
	CandidateName string
}

// Message renders the compact wire form sent over observer sockets,
// e.g. "v-c:Jane Doe,John Smith".
func (e VoteEvent) Message() string {
	action := ""
	switch e.Action {
	case ActionCreate:
		action = "-c:"
	case ActionUpdate:
		action = "-u:"
	case ActionDelete:
		action = "-d:"
	}
	return "v" + action + e.VoterName + "," + e.CandidateName
}
