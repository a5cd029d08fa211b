package entity

import (
	"fmt"
	"strings"
	"time"
)

// RequestStatus is the donation-request lifecycle state. The state machine is
// pending -> inprogress -> done|canceled, plus pending -> canceled; done and
// canceled are terminal.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "inprogress"
	StatusDone       RequestStatus = "done"
	StatusCanceled   RequestStatus = "canceled"
)

// ParseRequestStatus validates a status string against the closed set.
// Comparison is case-insensitive on input only; stored values are canonical.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch RequestStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusDone:
		return StatusDone, nil
	case StatusCanceled:
		return StatusCanceled, nil
	}
	return "", fmt.Errorf("unknown request status %q", s)
}

// Terminal reports whether no further transitions are accepted.
func (s RequestStatus) Terminal() bool {
	return s == StatusDone || s == StatusCanceled
}

// BloodGroup is one of the eight ABO/Rh groups.
type BloodGroup string

const (
	BloodAPos  BloodGroup = "A+"
	BloodANeg  BloodGroup = "A-"
	BloodBPos  BloodGroup = "B+"
	BloodBNeg  BloodGroup = "B-"
	BloodABPos BloodGroup = "AB+"
	BloodABNeg BloodGroup = "AB-"
	BloodOPos  BloodGroup = "O+"
	BloodONeg  BloodGroup = "O-"
)

// BloodGroups lists all valid groups in display order.
var BloodGroups = []BloodGroup{
	BloodAPos, BloodANeg, BloodBPos, BloodBNeg,
	BloodABPos, BloodABNeg, BloodOPos, BloodONeg,
}

func ParseBloodGroup(s string) (BloodGroup, error) {
	g := BloodGroup(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range BloodGroups {
		if g == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown blood group %q", s)
}

// Donor identifies the user who claimed a request. Nil until the request
// leaves pending via a claim; set exactly once.
type Donor struct {
	Name  string
	Email string
}

// DonationRequest is the aggregate root of the lifecycle core.
//
// Invariant: Donor != nil iff the request has ever transitioned out of
// pending via a claim. While Status is pending, Donor is always nil.
type DonationRequest struct {
	ID             string
	RequesterName  string
	RequesterEmail string
	RecipientName  string
	District       string
	Upazila        string
	HospitalName   string
	FullAddress    string
	BloodGroup     BloodGroup
	DonationDate   time.Time
	DonationTime   string
	Message        string
	Status         RequestStatus
	Donor          *Donor
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Editable reports whether field edits are still accepted. Edits are locked
// permanently once the request reaches a terminal state.
func (r *DonationRequest) Editable() bool {
	return r.Status == StatusPending || r.Status == StatusInProgress
}
