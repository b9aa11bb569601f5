package models

type StatusKind string

const (
	StatusIdle    StatusKind = "idle"
	StatusPending StatusKind = "pending"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status is the outcome of the latest login submission.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Code    int        `json:"code,omitempty"`
	Message string     `json:"message,omitempty"`
}
