package customer

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"farsha/internal/apiclient"
	"farsha/internal/models"
)

var phonePattern = regexp.MustCompile(`^09\d{9}$`)

const minPasswordLength = 8

// FieldErrors are form errors keyed by field name. They are reported
// before any backend call.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	return e.First()
}

// First returns the message of the first field in form order.
func (e FieldErrors) First() string {
	for _, f := range fieldOrder {
		if msg, ok := e[f]; ok {
			return msg
		}
	}
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		return e[keys[0]]
	}
	return ""
}

var fieldOrder = []string{"phone_number", "code", "old_password", "new_password", "confirm_password"}

func validatePhone(phone string) FieldErrors {
	switch {
	case phone == "":
		return FieldErrors{"phone_number": msgPhoneRequired}
	case !phonePattern.MatchString(phone):
		return FieldErrors{"phone_number": msgPhoneInvalid}
	}
	return nil
}

func validateNewPassword(errs FieldErrors, password, confirm string) {
	switch {
	case password == "":
		errs["new_password"] = msgPasswordRequired
	case utf8.RuneCountInString(password) < minPasswordLength:
		errs["new_password"] = msgPasswordTooShort
	}
	if password != confirm {
		errs["confirm_password"] = msgPasswordNotSame
	}
}

// ForgotPassword sends a recovery code to phone.
func (s *Service) ForgotPassword(ctx context.Context, phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if errs := validatePhone(phone); errs != nil {
		return "", errs
	}
	if _, err := s.api.ForgotPassword(ctx, phone); err != nil {
		return "", &apiclient.OpError{Message: apiclient.FieldMessage(err, msgCodeSendFailed, "phone_number"), Err: err}
	}
	return msgCodeSent, nil
}

// ResetPassword sets a new password with the recovery code.
func (s *Service) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (string, error) {
	errs := FieldErrors{}
	if req.Code == "" {
		errs["code"] = msgCodeRequired
	}
	validateNewPassword(errs, req.NewPassword, req.ConfirmPassword)
	if len(errs) > 0 {
		return "", errs
	}
	if _, err := s.api.ResetPassword(ctx, req); err != nil {
		return "", &apiclient.OpError{Message: apiclient.FieldMessage(err, msgPasswordFailed, "code", "new_password"), Err: err}
	}
	s.logger.Info().Msg("password reset completed")
	return msgPasswordChanged, nil
}

// ChangePassword changes the signed-in customer's password.
func (s *Service) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (string, error) {
	errs := FieldErrors{}
	if req.OldPassword == "" {
		errs["old_password"] = msgCurrentPasswordNeed
	}
	validateNewPassword(errs, req.NewPassword, req.ConfirmPassword)
	if msg, ok := errs["confirm_password"]; ok && msg == msgPasswordNotSame {
		errs["confirm_password"] = msgPasswordMismatch
	}
	if len(errs) > 0 {
		return "", errs
	}
	resp, err := s.api.ChangePassword(ctx, req)
	if err != nil {
		return "", apiclient.Fail(err, msgPasswordFailed, changePasswordFields...)
	}
	if resp != nil && resp.Message != "" {
		return resp.Message, nil
	}
	return msgPasswordChanged, nil
}

// SendOTP requests a verification code for phone.
func (s *Service) SendOTP(ctx context.Context, phone string) (string, int, error) {
	phone = strings.TrimSpace(phone)
	if errs := validatePhone(phone); errs != nil {
		return "", 0, errs
	}
	resp, err := s.api.SendOTP(ctx, phone)
	if err != nil {
		return "", 0, apiclient.Fail(err, msgCodeSendFailed, "phone_number")
	}
	if resp == nil {
		return msgOTPSent, 0, nil
	}
	return msgOTPSent, resp.ExpiresIn, nil
}
