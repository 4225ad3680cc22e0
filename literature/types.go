package literature

import (
	"fmt"
	"strings"
)

// Status 游戏阶段. Transitions only move forward.
type Status byte

const (
	StatusCreated      Status = 1
	StatusPlayersReady Status = 2
	StatusTeamsCreated Status = 3
	StatusInProgress   Status = 4
	StatusCompleted    Status = 5
)

var StatusDictionary = map[Status]string{
	StatusCreated:      "CREATED",
	StatusPlayersReady: "PLAYERS_READY",
	StatusTeamsCreated: "TEAMS_CREATED",
	StatusInProgress:   "IN_PROGRESS",
	StatusCompleted:    "COMPLETED",
}

func (s Status) String() string {
	if name, ok := StatusDictionary[s]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s Status) MarshalText() ([]byte, error) {
	if _, ok := StatusDictionary[s]; !ok {
		return nil, fmt.Errorf("invalid status %d", byte(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	for k, v := range StatusDictionary {
		if strings.EqualFold(v, string(b)) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("invalid status %q", b)
}

// MoveKind 动作类型：1-ASK 2-CLAIM 3-TRANSFER
type MoveKind byte

const (
	MoveAsk      MoveKind = 1
	MoveClaim    MoveKind = 2
	MoveTransfer MoveKind = 3
)

var MoveKindDictionary = map[MoveKind]string{
	MoveAsk:      "ASK",
	MoveClaim:    "CLAIM",
	MoveTransfer: "TRANSFER",
}

func (k MoveKind) String() string {
	if name, ok := MoveKindDictionary[k]; ok {
		return name
	}
	return "UNKNOWN"
}

func (k MoveKind) MarshalText() ([]byte, error) {
	if _, ok := MoveKindDictionary[k]; !ok {
		return nil, fmt.Errorf("invalid move kind %d", byte(k))
	}
	return []byte(k.String()), nil
}

func (k *MoveKind) UnmarshalText(b []byte) error {
	for kind, v := range MoveKindDictionary {
		if strings.EqualFold(v, string(b)) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("invalid move kind %q", b)
}

// Identity is the trusted actor description handed in by the caller.
type Identity struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6
