package customer

import (
	"context"
	"errors"
	"testing"

	"farsha/internal/apiclient"
	"farsha/internal/events"
	"farsha/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) GetCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.Category)
	return list, args.Error(1)
}

func (m *mockAPI) GetCities(ctx context.Context) ([]models.City, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.City)
	return list, args.Error(1)
}

func (m *mockAPI) GetAreas(ctx context.Context, cityID int64) ([]models.Area, error) {
	args := m.Called(ctx, cityID)
	list, _ := args.Get(0).([]models.Area)
	return list, args.Error(1)
}

func (m *mockAPI) SearchBusinesses(ctx context.Context, s models.BusinessSearch) ([]models.Business, error) {
	args := m.Called(ctx, s)
	list, _ := args.Get(0).([]models.Business)
	return list, args.Error(1)
}

func (m *mockAPI) GetBusiness(ctx context.Context, id string) (*models.Business, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*models.Business)
	return b, args.Error(1)
}

func (m *mockAPI) GetBusinessServices(ctx context.Context, id string) ([]models.Service, error) {
	args := m.Called(ctx, id)
	list, _ := args.Get(0).([]models.Service)
	return list, args.Error(1)
}

func (m *mockAPI) GetBusinessStaff(ctx context.Context, id string) ([]models.Staff, error) {
	args := m.Called(ctx, id)
	list, _ := args.Get(0).([]models.Staff)
	return list, args.Error(1)
}

func (m *mockAPI) GetBusinessReviews(ctx context.Context, id string) ([]models.Review, error) {
	args := m.Called(ctx, id)
	list, _ := args.Get(0).([]models.Review)
	return list, args.Error(1)
}

func (m *mockAPI) MyBookings(ctx context.Context, status string) ([]models.Booking, error) {
	args := m.Called(ctx, status)
	list, _ := args.Get(0).([]models.Booking)
	return list, args.Error(1)
}

func (m *mockAPI) CancelBooking(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *mockAPI) RescheduleBooking(ctx context.Context, id int64, req models.RescheduleRequest) error {
	return m.Called(ctx, id, req).Error(0)
}

func (m *mockAPI) RateBooking(ctx context.Context, id int64, req models.RateRequest) error {
	return m.Called(ctx, id, req).Error(0)
}

func (m *mockAPI) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (*apiclient.MessageResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*apiclient.MessageResponse)
	return resp, args.Error(1)
}

func (m *mockAPI) SendOTP(ctx context.Context, phone string) (*apiclient.MessageResponse, error) {
	args := m.Called(ctx, phone)
	resp, _ := args.Get(0).(*apiclient.MessageResponse)
	return resp, args.Error(1)
}

func (m *mockAPI) ForgotPassword(ctx context.Context, phone string) (*apiclient.MessageResponse, error) {
	args := m.Called(ctx, phone)
	resp, _ := args.Get(0).(*apiclient.MessageResponse)
	return resp, args.Error(1)
}

func (m *mockAPI) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*apiclient.MessageResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*apiclient.MessageResponse)
	return resp, args.Error(1)
}

var anyArg = mock.Anything

func TestHome(t *testing.T) {
	api := &mockAPI{}
	api.On("GetCategories", anyArg).Return([]models.Category{{ID: 1, Name: "آرایشگاه"}}, nil)
	api.On("SearchBusinesses", anyArg, models.BusinessSearch{Featured: true, Limit: 8}).Return([]models.Business{{ID: 42}}, nil)
	api.On("GetCities", anyArg).Return([]models.City{{ID: 1, Name: "تهران"}}, nil)

	v, err := NewService(api, nil, nil).Home(context.Background())
	require.NoError(t, err)
	assert.Len(t, v.Categories, 1)
	assert.Len(t, v.Featured, 1)
	assert.Len(t, v.Cities, 1)
	api.AssertExpectations(t)
}

func TestHome_AnyFailureFailsPage(t *testing.T) {
	api := &mockAPI{}
	api.On("GetCategories", anyArg).Return(nil, errors.New("down"))
	api.On("SearchBusinesses", anyArg, anyArg).Return([]models.Business{}, nil).Maybe()
	api.On("GetCities", anyArg).Return([]models.City{}, nil).Maybe()

	_, err := NewService(api, nil, nil).Home(context.Background())
	require.Error(t, err)
	assert.Equal(t, "خطا در بارگذاری اطلاعات", apiclient.Display(err, ""))
}

func TestSearch(t *testing.T) {
	t.Run("DefaultSortAndBestEffortFilters", func(t *testing.T) {
		api := &mockAPI{}
		api.On("GetCategories", anyArg).Return(nil, errors.New("down"))
		api.On("GetCities", anyArg).Return([]models.City{{ID: 1}}, nil)
		api.On("SearchBusinesses", anyArg, models.BusinessSearch{Query: "مو", City: "tehran", Sort: "popular"}).
			Return([]models.Business{{ID: 42}, {ID: 43}}, nil)

		v, err := NewService(api, nil, nil).Search(context.Background(), models.BusinessSearch{Query: "مو", City: "tehran"})
		require.NoError(t, err)
		assert.Equal(t, "popular", v.Query.Sort)
		assert.Len(t, v.Results, 2)
		assert.Empty(t, v.Categories)
		assert.Len(t, v.Cities, 1)
		api.AssertExpectations(t)
	})

	t.Run("SearchFailure", func(t *testing.T) {
		api := &mockAPI{}
		api.On("GetCategories", anyArg).Return([]models.Category{}, nil)
		api.On("GetCities", anyArg).Return([]models.City{}, nil)
		api.On("SearchBusinesses", anyArg, anyArg).Return(nil, &apiclient.APIError{Status: 500})

		_, err := NewService(api, nil, nil).Search(context.Background(), models.BusinessSearch{Sort: "rating"})
		assert.Equal(t, "خطا در جستجو", apiclient.Display(err, ""))
	})
}

func TestBusiness(t *testing.T) {
	api := &mockAPI{}
	api.On("GetBusiness", anyArg, "42").Return(&models.Business{ID: 42, Name: "سالن رز"}, nil)
	api.On("GetBusinessServices", anyArg, "42").Return([]models.Service{{ID: 7}}, nil)
	api.On("GetBusinessStaff", anyArg, "42").Return([]models.Staff{{ID: 3}}, nil)
	api.On("GetBusinessReviews", anyArg, "42").Return([]models.Review{}, nil)

	v, err := NewService(api, nil, nil).Business(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "سالن رز", v.Business.Name)
	assert.Len(t, v.Services, 1)
	assert.Len(t, v.Staff, 1)
	api.AssertExpectations(t)
}

func TestMyBookings_Tabs(t *testing.T) {
	api := &mockAPI{}
	api.On("MyBookings", anyArg, "confirmed,pending").Return([]models.Booking{{ID: 1, Status: "confirmed"}, {ID: 2, Status: "pending"}}, nil)
	api.On("MyBookings", anyArg, "completed,cancelled").Return([]models.Booking{
		{ID: 3, Status: "completed"},
		{ID: 4, Status: "completed", HasReview: true},
		{ID: 5, Status: "cancelled"},
	}, nil)
	svc := NewService(api, nil, nil)

	v, err := svc.MyBookings(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "upcoming", v.Tab)
	assert.True(t, v.Bookings[0].CanReschedule)
	assert.False(t, v.Bookings[1].CanReschedule)

	v, err = svc.MyBookings(context.Background(), "past")
	require.NoError(t, err)
	assert.True(t, v.Bookings[0].CanRate)
	assert.False(t, v.Bookings[1].CanRate)
	assert.True(t, v.Bookings[2].CanRebook)
	assert.Equal(t, "لغو شده", v.Bookings[2].StatusLabel)
}

func TestCancelBooking_Reloads(t *testing.T) {
	api := &mockAPI{}
	api.On("CancelBooking", anyArg, int64(1), "").Return(nil).Once()
	api.On("MyBookings", anyArg, "confirmed,pending").Return([]models.Booking{{ID: 2, Status: "pending"}}, nil).Once()

	bus := events.NewEventBus()
	var got events.BookingEventPayload
	bus.Subscribe(events.EventBookingCanceled, func(e *events.Event) error { return e.Decode(&got) })

	v, msg, err := NewService(api, bus, nil).CancelBooking(context.Background(), "v1", 1, "  ", "upcoming")
	require.NoError(t, err)
	assert.Equal(t, "رزرو با موفقیت لغو شد", msg)
	assert.Len(t, v.Bookings, 1)
	assert.Equal(t, int64(1), got.BookingID)
	api.AssertExpectations(t)
}

func TestCancelBooking_Failure(t *testing.T) {
	api := &mockAPI{}
	api.On("CancelBooking", anyArg, int64(1), "دیر شد").
		Return(&apiclient.APIError{Status: 400, Payload: map[string]any{"error": "امکان لغو این رزرو وجود ندارد"}})

	_, _, err := NewService(api, nil, nil).CancelBooking(context.Background(), "v1", 1, "دیر شد", "upcoming")
	require.Error(t, err)
	assert.Equal(t, "امکان لغو این رزرو وجود ندارد", apiclient.Display(err, ""))
	api.AssertNotCalled(t, "MyBookings", anyArg, anyArg)
}

func TestRescheduleAndRate(t *testing.T) {
	api := &mockAPI{}
	req := models.RescheduleRequest{Date: "2026-10-20", Time: "12:00"}
	api.On("RescheduleBooking", anyArg, int64(1), req).Return(nil)
	api.On("RateBooking", anyArg, int64(3), models.RateRequest{Rating: 5, Comment: "عالی"}).Return(nil)
	api.On("MyBookings", anyArg, anyArg).Return([]models.Booking{}, nil)
	svc := NewService(api, nil, nil)
	ctx := context.Background()

	_, _, err := svc.RescheduleBooking(ctx, "v1", 1, models.RescheduleRequest{Date: "2026-10-20"}, "upcoming")
	assert.ErrorIs(t, err, apiclient.ErrInvalidInput)

	_, msg, err := svc.RescheduleBooking(ctx, "v1", 1, req, "upcoming")
	require.NoError(t, err)
	assert.Equal(t, msgRescheduled, msg)

	_, _, err = svc.RateBooking(ctx, 3, models.RateRequest{Rating: 6}, "past")
	assert.Equal(t, msgInvalidRating, apiclient.Display(err, ""))
	_, _, err = svc.RateBooking(ctx, 3, models.RateRequest{Rating: 4, Cleanliness: 9}, "past")
	assert.ErrorIs(t, err, apiclient.ErrInvalidInput)

	_, msg, err = svc.RateBooking(ctx, 3, models.RateRequest{Rating: 5, Comment: "عالی"}, "past")
	require.NoError(t, err)
	assert.Equal(t, msgRated, msg)
}

func TestForgotPassword(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		apiErr  error
		wantMsg string
		wantErr string
	}{
		{name: "Empty", phone: "", wantErr: "شماره تلفن الزامی است"},
		{name: "Invalid", phone: "9121234567", wantErr: "شماره تلفن نامعتبر است"},
		{name: "Sent", phone: "09121234567", wantMsg: "کد بازیابی ارسال شد"},
		{
			name:    "FieldBeforeDetail",
			phone:   "09121234567",
			apiErr:  &apiclient.APIError{Status: 400, Payload: map[string]any{"phone_number": []any{"کاربری با این شماره یافت نشد"}, "detail": "x"}},
			wantErr: "کاربری با این شماره یافت نشد",
		},
		{
			name:    "Fallback",
			phone:   "09121234567",
			apiErr:  errors.New("timeout"),
			wantErr: "خطا در ارسال کد",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAPI{}
			api.On("ForgotPassword", anyArg, tt.phone).Return(&apiclient.MessageResponse{}, tt.apiErr).Maybe()

			msg, err := NewService(api, nil, nil).ForgotPassword(context.Background(), tt.phone)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, apiclient.Display(err, err.Error()))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestResetPassword(t *testing.T) {
	svc := NewService(&mockAPI{}, nil, nil)

	_, err := svc.ResetPassword(context.Background(), models.ResetPasswordRequest{NewPassword: "short", ConfirmPassword: "other"})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FieldErrors{
		"code":             "کد الزامی است",
		"new_password":     "رمز عبور باید حداقل 8 کاراکتر باشد",
		"confirm_password": "رمز عبور یکسان نیست",
	}, fe)
	assert.Equal(t, "کد الزامی است", fe.First())

	api := &mockAPI{}
	req := models.ResetPasswordRequest{PhoneNumber: "09121234567", Code: "123456", NewPassword: "newpass123", ConfirmPassword: "newpass123"}
	api.On("ResetPassword", anyArg, req).Return(nil, &apiclient.APIError{Status: 400, Payload: map[string]any{
		"new_password": []any{"رمز عبور ساده است"},
		"code":         []any{"کد منقضی شده است"},
	}})
	_, err = NewService(api, nil, nil).ResetPassword(context.Background(), req)
	assert.Equal(t, "کد منقضی شده است", apiclient.Display(err, ""))
}

func TestChangePassword(t *testing.T) {
	api := &mockAPI{}
	req := models.ChangePasswordRequest{OldPassword: "oldpass12", NewPassword: "newpass123", ConfirmPassword: "newpass123"}
	api.On("ChangePassword", anyArg, req).Return(&apiclient.MessageResponse{}, nil)
	svc := NewService(api, nil, nil)

	_, err := svc.ChangePassword(context.Background(), models.ChangePasswordRequest{OldPassword: "x", NewPassword: "newpass123", ConfirmPassword: "newpass124"})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "رمز عبور جدید و تکرار آن مطابقت ندارند", fe["confirm_password"])

	msg, err := svc.ChangePassword(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "رمز عبور با موفقیت تغییر کرد", msg)
}

func TestSendOTP(t *testing.T) {
	api := &mockAPI{}
	api.On("SendOTP", anyArg, "09121234567").Return(&apiclient.MessageResponse{Message: "OTP sent", ExpiresIn: 300}, nil)

	msg, expires, err := NewService(api, nil, nil).SendOTP(context.Background(), " 09121234567 ")
	require.NoError(t, err)
	assert.Equal(t, "کد تایید ارسال شد", msg)
	assert.Equal(t, 300, expires)
}
