package partner

import (
	"context"
	"strings"

	"farsha/internal/apiclient"
	"farsha/internal/models"
)

// Services lists the business services.
func (s *Service) Services(ctx context.Context) ([]models.Service, error) {
	list, err := s.api.PartnerServices(ctx)
	if err != nil {
		return nil, apiclient.Fail(err, msgServicesLoadFailed)
	}
	return list, nil
}

// SaveService creates the service when id is zero and updates it
// otherwise, then reloads the list.
func (s *Service) SaveService(ctx context.Context, id int64, in models.ServiceInput) ([]models.Service, string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, "", apiclient.Invalid(msgNameRequired)
	}
	msg := msgServiceCreated
	var err error
	if id == 0 {
		_, err = s.api.CreateService(ctx, in)
	} else {
		msg = msgServiceUpdated
		_, err = s.api.UpdateService(ctx, id, in)
	}
	if err != nil {
		return nil, "", apiclient.Fail(err, msgServiceSaveFailed, serviceFields...)
	}
	list, err := s.Services(ctx)
	return list, msg, err
}

func (s *Service) DeleteService(ctx context.Context, id int64) ([]models.Service, string, error) {
	if err := s.api.DeleteService(ctx, id); err != nil {
		return nil, "", apiclient.Fail(err, msgServiceDeleteFailed)
	}
	list, err := s.Services(ctx)
	return list, msgServiceDeleted, err
}

func (s *Service) ToggleService(ctx context.Context, id int64) ([]models.Service, string, error) {
	if err := s.api.ToggleServiceStatus(ctx, id); err != nil {
		return nil, "", apiclient.Fail(err, msgStatusChangeFailed)
	}
	list, err := s.Services(ctx)
	return list, msgServiceToggled, err
}

// Staff lists the business staff.
func (s *Service) Staff(ctx context.Context) ([]models.Staff, error) {
	list, err := s.api.PartnerStaff(ctx)
	if err != nil {
		return nil, apiclient.Fail(err, msgStaffLoadFailed)
	}
	return list, nil
}

// SaveStaff creates or updates a staff member, then reloads the list.
func (s *Service) SaveStaff(ctx context.Context, id int64, in models.StaffInput) ([]models.Staff, string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, "", apiclient.Invalid(msgNameRequired)
	}
	msg := msgStaffCreated
	var err error
	if id == 0 {
		_, err = s.api.CreateStaff(ctx, in)
	} else {
		msg = msgStaffUpdated
		_, err = s.api.UpdateStaff(ctx, id, in)
	}
	if err != nil {
		return nil, "", apiclient.Fail(err, msgStaffSaveFailed, staffFields...)
	}
	list, err := s.Staff(ctx)
	return list, msg, err
}

func (s *Service) DeleteStaff(ctx context.Context, id int64) ([]models.Staff, string, error) {
	if err := s.api.DeleteStaff(ctx, id); err != nil {
		return nil, "", apiclient.Fail(err, msgStaffDeleteFailed)
	}
	list, err := s.Staff(ctx)
	return list, msgStaffDeleted, err
}

// Schedule reads the weekly schedule of a staff member. week is an
// optional YYYY-MM-DD anchor.
func (s *Service) Schedule(ctx context.Context, staffID int64, week string) ([]models.StaffSchedule, error) {
	list, err := s.api.StaffSchedule(ctx, staffID, week)
	if err != nil {
		return nil, apiclient.Fail(err, msgScheduleLoadFailed)
	}
	return list, nil
}

// SaveSchedule replaces the staff schedule and returns the stored one.
func (s *Service) SaveSchedule(ctx context.Context, staffID int64, schedule []models.StaffSchedule) ([]models.StaffSchedule, string, error) {
	for _, day := range schedule {
		if day.Weekday < 0 || day.Weekday > 6 {
			return nil, "", apiclient.Invalid(msgScheduleSaveFailed)
		}
	}
	if err := s.api.UpdateStaffSchedule(ctx, staffID, schedule); err != nil {
		return nil, "", apiclient.Fail(err, msgScheduleSaveFailed, "schedules", "non_field_errors")
	}
	list, err := s.Schedule(ctx, staffID, "")
	return list, msgScheduleSaved, err
}
