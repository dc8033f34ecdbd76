package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestDomain enum
type RequestDomain string

const (
	DomainWaste RequestDomain = "waste"
	DomainWater RequestDomain = "water"
)

// RequestStatus enum. Both domains share the same lifecycle shape but use
// their own terminal vocabulary.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusScheduled RequestStatus = "scheduled"

	// waste terminals
	StatusCollected    RequestStatus = "collected"
	StatusNotCollected RequestStatus = "not-collected"

	// water terminals
	StatusResolved    RequestStatus = "resolved"
	StatusNotResolved RequestStatus = "not-resolved"
)

// ReportStatusPending is the initial status of every escalation report.
const ReportStatusPending = "pending"

var (
	ErrInvalidPin       = errors.New("invalid verification pin")
	ErrAlreadyResolved  = errors.New("request is already resolved")
	ErrReportNotAllowed = errors.New("request is not in a reportable state")
)

// ResolvedStatus returns the domain's terminal success status.
func (d RequestDomain) ResolvedStatus() RequestStatus {
	if d == DomainWaste {
		return StatusCollected
	}
	return StatusResolved
}

// FailedStatus returns the domain's missed-schedule status.
func (d RequestDomain) FailedStatus() RequestStatus {
	if d == DomainWaste {
		return StatusNotCollected
	}
	return StatusNotResolved
}

// Statuses returns the full status vocabulary of the domain.
func (d RequestDomain) Statuses() []RequestStatus {
	return []RequestStatus{StatusPending, StatusScheduled, d.ResolvedStatus(), d.FailedStatus()}
}

// ValidStatus reports whether s belongs to the domain's vocabulary.
func (d RequestDomain) ValidStatus(s string) bool {
	for _, v := range d.Statuses() {
		if RequestStatus(s) == v {
			return true
		}
	}
	return false
}

// Report is a citizen-filed escalation claiming a missed resolution.
type Report struct {
	ReportedAt   time.Time          `bson:"reportedAt" json:"reportedAt"`
	ReportedBy   primitive.ObjectID `bson:"reportedBy" json:"reportedBy"`
	Reason       string             `bson:"reason" json:"reason"`
	ReportStatus string             `bson:"reportStatus" json:"reportStatus"`
}

// ServiceRequest is a citizen-submitted waste or water service ticket.
// WasteType is set for waste requests, IssueType for water requests.
type ServiceRequest struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Domain          RequestDomain       `bson:"domain" json:"domain"`
	Name            string              `bson:"name" json:"name"`
	Address         string              `bson:"address" json:"address"`
	Phone           string              `bson:"phone" json:"phone"`
	WasteType       *string             `bson:"wasteType,omitempty" json:"wasteType,omitempty"`
	IssueType       *string             `bson:"issueType,omitempty" json:"issueType,omitempty"`
	Latitude        *float64            `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude       *float64            `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Status          RequestStatus       `bson:"status" json:"status"`
	VerificationPin string              `bson:"verificationPin" json:"verificationPin,omitempty"`
	AssignedTo      *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	ScheduledTime   *time.Time          `bson:"scheduledTime,omitempty" json:"scheduledTime,omitempty"`
	ScheduledBy     *primitive.ObjectID `bson:"scheduledBy,omitempty" json:"scheduledBy,omitempty"`
	CompletionDate  *time.Time          `bson:"completionDate,omitempty" json:"completionDate,omitempty"`
	Reports         []Report            `bson:"reports" json:"reports"`
	CreatedBy       primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsResolved reports whether the request reached its terminal success state.
func (r *ServiceRequest) IsResolved() bool {
	return r.Status == r.Domain.ResolvedStatus()
}

// Schedule records an admin-chosen collection/visit time and moves the
// request to scheduled. Rescheduling a missed request is allowed; a resolved
// request stays resolved.
func (r *ServiceRequest) Schedule(at time.Time, by primitive.ObjectID) error {
	if r.IsResolved() {
		return ErrAlreadyResolved
	}
	r.ScheduledTime = &at
	r.ScheduledBy = &by
	r.Status = StatusScheduled
	return nil
}

// Assign binds the request to a worker. Assignment always schedules, even
// when no scheduledTime has been set yet.
func (r *ServiceRequest) Assign(worker primitive.ObjectID) error {
	if r.IsResolved() {
		return ErrAlreadyResolved
	}
	r.AssignedTo = &worker
	r.Status = StatusScheduled
	return nil
}

// AddReport appends an escalation report from the requester. Reports are only
// accepted while the request is scheduled or already in the failure state. The
// status flips to the domain failure value only when the scheduled time has
// passed; an early report is kept but changes nothing. Returns whether the
// status flipped.
func (r *ServiceRequest) AddReport(by primitive.ObjectID, reason string, now time.Time) (bool, error) {
	if r.Status != StatusScheduled && r.Status != r.Domain.FailedStatus() {
		return false, ErrReportNotAllowed
	}

	r.Reports = append(r.Reports, Report{
		ReportedAt:   now,
		ReportedBy:   by,
		Reason:       strings.TrimSpace(reason),
		ReportStatus: ReportStatusPending,
	})

	if r.ScheduledTime != nil && now.After(*r.ScheduledTime) && r.Status != r.Domain.FailedStatus() {
		r.Status = r.Domain.FailedStatus()
		return true, nil
	}
	return false, nil
}

// Verify closes the request when the submitted pin matches the one issued at
// creation. A wrong pin never mutates the request. Exact, case-sensitive
// string match; no attempt limit.
func (r *ServiceRequest) Verify(pin string, now time.Time) error {
	if r.IsResolved() {
		return ErrAlreadyResolved
	}
	if pin != r.VerificationPin {
		return ErrInvalidPin
	}
	r.Status = r.Domain.ResolvedStatus()
	r.CompletionDate = &now
	return nil
}
