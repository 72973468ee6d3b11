package models

// Kunci tabel event_config
const (
	ConfigAllowVoting = "allow_voting"
	ConfigEventDate   = "event_date"
	ConfigVotingStart = "voting_start"
	ConfigVotingEnd   = "voting_end"
	ConfigEventName   = "event_name"
)

// EventConfig - key/value dari tabel event_config
type EventConfig map[string]string

type UpdateEventConfigRequest struct {
	AllowVoting *string `json:"allow_voting" validate:"omitempty,oneof=true false"`
	EventDate   *string `json:"event_date" validate:"omitempty,datetime=2006-01-02"`
	VotingStart *string `json:"voting_start" validate:"omitempty,timeofday"`
	VotingEnd   *string `json:"voting_end" validate:"omitempty,timeofday"`
	EventName   *string `json:"event_name" validate:"omitempty,max=255"`
}
