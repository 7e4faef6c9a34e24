package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/drivedesk/drivedesk-api/internal/dto"
)

func updateSchoolRequest(lunchStart, lunchEnd string) dto.UpdateSchoolProfileRequest {
	return dto.UpdateSchoolProfileRequest{
		Name:           "Test Driving School",
		DayStartTime:   "09:00",
		DayEndTime:     "17:00",
		LunchStartTime: &lunchStart,
		LunchEndTime:   &lunchEnd,
		WeeklyHoliday:  strPtr("SUNDAY"),
	}
}

func newSchoolFixture() (*SchoolService, *stubSchoolReader, *stubInvalidator) {
	repo := &stubSchoolReader{profile: testProfile()}
	invalidator := &stubInvalidator{}
	return NewSchoolService(repo, invalidator, nil, zap.NewNop()), repo, invalidator
}

func strPtr(v string) *string { return &v }

func TestSchoolServiceUpdate(t *testing.T) {
	svc, repo, invalidator := newSchoolFixture()

	profile, err := svc.Update(context.Background(), updateSchoolRequest("12:00", "13:00"))
	require.NoError(t, err)
	assert.Equal(t, "school-1", profile.ID)
	assert.Equal(t, "09:00", profile.DayStartTime)
	assert.Equal(t, profile, repo.profile)
	assert.Equal(t, 1, invalidator.invalidatedAll)
}

func TestSchoolServiceRejectsLunchOutsideOperatingHours(t *testing.T) {
	svc, repo, invalidator := newSchoolFixture()
	before := repo.profile

	// Lunch starting before the working day opens.
	_, err := svc.Update(context.Background(), updateSchoolRequest("08:00", "09:30"))
	require.Error(t, err)

	// Lunch running past closing time.
	_, err = svc.Update(context.Background(), updateSchoolRequest("16:00", "18:00"))
	require.Error(t, err)

	assert.Equal(t, before, repo.profile)
	assert.Zero(t, invalidator.invalidatedAll)
}

func TestSchoolServiceRejectsInvertedLunch(t *testing.T) {
	svc, _, _ := newSchoolFixture()

	_, err := svc.Update(context.Background(), updateSchoolRequest("14:00", "13:00"))
	require.Error(t, err)
}

func TestSchoolServiceRejectsUnknownWeeklyHoliday(t *testing.T) {
	svc, _, _ := newSchoolFixture()

	req := updateSchoolRequest("12:00", "13:00")
	req.WeeklyHoliday = strPtr("FUNDAY")
	_, err := svc.Update(context.Background(), req)
	require.Error(t, err)
}
