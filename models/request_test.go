package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestRequest(domain RequestDomain) *ServiceRequest {
	return &ServiceRequest{
		ID:              primitive.NewObjectID(),
		Domain:          domain,
		Name:            "Asha Kumari",
		Address:         "12 Gandhi Road",
		Phone:           "9876543210",
		Status:          StatusPending,
		VerificationPin: "1234",
		Reports:         []Report{},
		CreatedBy:       primitive.NewObjectID(),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

func TestDomainVocabulary(t *testing.T) {
	assert.Equal(t, StatusCollected, DomainWaste.ResolvedStatus())
	assert.Equal(t, StatusNotCollected, DomainWaste.FailedStatus())
	assert.Equal(t, StatusResolved, DomainWater.ResolvedStatus())
	assert.Equal(t, StatusNotResolved, DomainWater.FailedStatus())

	assert.True(t, DomainWaste.ValidStatus("not-collected"))
	assert.False(t, DomainWaste.ValidStatus("not-resolved"))
	assert.True(t, DomainWater.ValidStatus("resolved"))
	assert.False(t, DomainWater.ValidStatus("Resolved"))
}

func TestScheduleFromPending(t *testing.T) {
	r := newTestRequest(DomainWaste)
	admin := primitive.NewObjectID()
	at := time.Now().Add(24 * time.Hour)

	require.NoError(t, r.Schedule(at, admin))
	assert.Equal(t, StatusScheduled, r.Status)
	require.NotNil(t, r.ScheduledTime)
	assert.Equal(t, at, *r.ScheduledTime)
	require.NotNil(t, r.ScheduledBy)
	assert.Equal(t, admin, *r.ScheduledBy)
}

func TestRescheduleAfterMissed(t *testing.T) {
	r := newTestRequest(DomainWaste)
	r.Status = StatusNotCollected

	require.NoError(t, r.Schedule(time.Now().Add(time.Hour), primitive.NewObjectID()))
	assert.Equal(t, StatusScheduled, r.Status)
}

func TestScheduleResolvedFails(t *testing.T) {
	r := newTestRequest(DomainWater)
	r.Status = StatusResolved

	err := r.Schedule(time.Now(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	assert.Equal(t, StatusResolved, r.Status)
}

func TestAssignForcesScheduled(t *testing.T) {
	r := newTestRequest(DomainWaste)
	worker := primitive.NewObjectID()

	require.NoError(t, r.Assign(worker))
	assert.Equal(t, StatusScheduled, r.Status)
	require.NotNil(t, r.AssignedTo)
	assert.Equal(t, worker, *r.AssignedTo)
	// Auto-schedule leaves the actual time unset until an admin picks one
	assert.Nil(t, r.ScheduledTime)
}

func TestAssignIsIdempotent(t *testing.T) {
	r := newTestRequest(DomainWaste)
	worker := primitive.NewObjectID()

	require.NoError(t, r.Assign(worker))
	require.NoError(t, r.Assign(worker))
	assert.Equal(t, StatusScheduled, r.Status)
	assert.Equal(t, worker, *r.AssignedTo)
}

func TestAssignResolvedFails(t *testing.T) {
	r := newTestRequest(DomainWaste)
	r.Status = StatusCollected

	err := r.Assign(primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	assert.Nil(t, r.AssignedTo)
}

func TestReportBeforeScheduledTimeKeepsStatus(t *testing.T) {
	r := newTestRequest(DomainWaste)
	future := time.Now().Add(2 * time.Hour)
	require.NoError(t, r.Schedule(future, primitive.NewObjectID()))

	flipped, err := r.AddReport(r.CreatedBy, "truck has not arrived yet", time.Now())
	require.NoError(t, err)
	assert.False(t, flipped)
	assert.Equal(t, StatusScheduled, r.Status)
	require.Len(t, r.Reports, 1)
	assert.Equal(t, ReportStatusPending, r.Reports[0].ReportStatus)
}

func TestReportAfterScheduledTimeFlipsStatus(t *testing.T) {
	r := newTestRequest(DomainWaste)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, r.Schedule(past, primitive.NewObjectID()))

	flipped, err := r.AddReport(r.CreatedBy, "truck never came, waited all day", time.Now())
	require.NoError(t, err)
	assert.True(t, flipped)
	assert.Equal(t, StatusNotCollected, r.Status)
}

func TestRepeatedLateReportsFlipOnce(t *testing.T) {
	r := newTestRequest(DomainWater)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, r.Schedule(past, primitive.NewObjectID()))

	flipped, err := r.AddReport(r.CreatedBy, "no one showed up", time.Now())
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = r.AddReport(r.CreatedBy, "still nothing", time.Now())
	require.NoError(t, err)
	assert.False(t, flipped)
	assert.Equal(t, StatusNotResolved, r.Status)
	assert.Len(t, r.Reports, 2)
}

func TestReportWithoutScheduledTimeKeepsStatus(t *testing.T) {
	r := newTestRequest(DomainWaste)
	require.NoError(t, r.Assign(primitive.NewObjectID()))

	flipped, err := r.AddReport(r.CreatedBy, "nothing happened", time.Now())
	require.NoError(t, err)
	assert.False(t, flipped)
	assert.Equal(t, StatusScheduled, r.Status)
}

func TestReportOnPendingRejected(t *testing.T) {
	r := newTestRequest(DomainWaste)

	_, err := r.AddReport(r.CreatedBy, "too early to complain", time.Now())
	assert.ErrorIs(t, err, ErrReportNotAllowed)
	assert.Empty(t, r.Reports)
}

func TestReportReasonTrimmed(t *testing.T) {
	r := newTestRequest(DomainWaste)
	require.NoError(t, r.Schedule(time.Now().Add(time.Hour), primitive.NewObjectID()))

	_, err := r.AddReport(r.CreatedBy, "  bin overflowing  ", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "bin overflowing", r.Reports[0].Reason)
}

func TestVerifyWrongPinNeverMutates(t *testing.T) {
	r := newTestRequest(DomainWaste)
	require.NoError(t, r.Schedule(time.Now(), primitive.NewObjectID()))

	err := r.Verify("0000", time.Now())
	assert.ErrorIs(t, err, ErrInvalidPin)
	assert.Equal(t, StatusScheduled, r.Status)
	assert.Nil(t, r.CompletionDate)
}

func TestVerifyCorrectPinResolves(t *testing.T) {
	for _, tc := range []struct {
		domain RequestDomain
		want   RequestStatus
	}{
		{DomainWaste, StatusCollected},
		{DomainWater, StatusResolved},
	} {
		r := newTestRequest(tc.domain)
		require.NoError(t, r.Schedule(time.Now().Add(-time.Hour), primitive.NewObjectID()))

		now := time.Now()
		require.NoError(t, r.Verify("1234", now))
		assert.Equal(t, tc.want, r.Status)
		require.NotNil(t, r.CompletionDate)
		assert.WithinDuration(t, now, *r.CompletionDate, time.Second)
	}
}

func TestVerifyAfterMissedScheduleStillResolves(t *testing.T) {
	r := newTestRequest(DomainWaste)
	require.NoError(t, r.Schedule(time.Now().Add(-2*time.Hour), primitive.NewObjectID()))
	_, err := r.AddReport(r.CreatedBy, "truck never came, waited all day", time.Now())
	require.NoError(t, err)
	require.Equal(t, StatusNotCollected, r.Status)

	require.NoError(t, r.Verify("1234", time.Now()))
	assert.Equal(t, StatusCollected, r.Status)
}

func TestVerifyResolvedRejected(t *testing.T) {
	r := newTestRequest(DomainWater)
	require.NoError(t, r.Schedule(time.Now(), primitive.NewObjectID()))
	require.NoError(t, r.Verify("1234", time.Now()))
	first := *r.CompletionDate

	err := r.Verify("1234", time.Now().Add(time.Minute))
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	assert.Equal(t, first, *r.CompletionDate)
}

func TestVerifyPinIsCaseAndLengthExact(t *testing.T) {
	r := newTestRequest(DomainWaste)
	require.NoError(t, r.Schedule(time.Now(), primitive.NewObjectID()))

	assert.ErrorIs(t, r.Verify("123", time.Now()), ErrInvalidPin)
	assert.ErrorIs(t, r.Verify("12345", time.Now()), ErrInvalidPin)
	assert.ErrorIs(t, r.Verify(" 1234", time.Now()), ErrInvalidPin)
}
