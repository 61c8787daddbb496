package report

import "strings"

// ParticipantType is the shape a participant is drawn with in sequence
// diagrams.
type ParticipantType string

const (
	ParticipantDefault     ParticipantType = "participant"
	ParticipantActor       ParticipantType = "actor"
	ParticipantBoundary    ParticipantType = "boundary"
	ParticipantControl     ParticipantType = "control"
	ParticipantEntity      ParticipantType = "entity"
	ParticipantDatabase    ParticipantType = "database"
	ParticipantCollections ParticipantType = "collections"
	ParticipantQueue       ParticipantType = "queue"
)

// Called returns a participant of type t named name. An optional alias is
// shown instead of the name.
func (t ParticipantType) Called(name string, alias ...string) Participant {
	p := Participant{Name: strings.TrimSpace(name), Type: t}
	if len(alias) > 0 {
		p.Alias = strings.TrimSpace(alias[0])
	}
	return p
}

// Participant is a named party of the captured interactions. Steps refer
// to it by Name through their From and To fields.
type Participant struct {
	Name  string          `json:"name"`
	Alias string          `json:"alias,omitempty"`
	Type  ParticipantType `json:"type,omitempty"`
}

// Kind returns the participant type, defaulting to a plain participant.
func (p Participant) Kind() ParticipantType {
	switch p.Type {
	case ParticipantActor, ParticipantBoundary, ParticipantControl, ParticipantEntity,
		ParticipantDatabase, ParticipantCollections, ParticipantQueue:
		return p.Type
	default:
		return ParticipantDefault
	}
}

// DisplayName returns the alias when set and the name otherwise.
func (p Participant) DisplayName() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Name
}

// MergeParticipants appends the participants of extra that base does not
// name yet, keeping first occurrences.
func MergeParticipants(base []Participant, extra ...Participant) []Participant {
	seen := make(map[string]struct{}, len(base)+len(extra))
	var out []Participant
	for _, group := range [][]Participant{base, extra} {
		for _, p := range group {
			if p.Name == "" {
				continue
			}
			if _, dup := seen[p.Name]; dup {
				continue
			}
			seen[p.Name] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
