package booking

import (
	"errors"
	"fmt"

	"farsha/internal/apiclient"
)

var (
	ErrLoginRequired    = errors.New("login required")
	ErrServiceRequired  = errors.New("service is required")
	ErrDateRequired     = errors.New("date is required")
	ErrTimeRequired     = errors.New("time is required")
	ErrUnknownService   = errors.New("unknown service")
	ErrUnknownStaff     = errors.New("unknown staff")
	ErrDateOutOfRange   = errors.New("date out of booking window")
	ErrSlotUnavailable  = errors.New("slot unavailable")
	ErrWizardNotStarted = errors.New("wizard not started")
	ErrInvalidStep      = errors.New("invalid step")
)

const (
	msgLoadFailed       = "خطا در بارگذاری اطلاعات"
	msgSlotsFailed      = "خطا در بارگذاری ساعات خالی"
	msgFieldsRequired   = "لطفاً تمام فیلدها را پر کنید"
	msgCreateFailed     = "خطا در ثبت رزرو"
	msgCreated          = "رزرو شما با موفقیت ثبت شد"
	msgUnknownService   = "خدمت انتخاب شده یافت نشد"
	msgUnknownStaff     = "متخصص انتخاب شده یافت نشد"
	msgDateOutOfRange   = "تاریخ انتخاب شده خارج از بازه رزرو است"
	msgSlotUnavailable  = "این ساعت قابل رزرو نیست"
	msgWizardNotStarted = "ابتدا صفحه رزرو را باز کنید"
	msgInvalidStep      = "مرحله نامعتبر است"
)

// LoginRequiredError asks the caller to sign in and come back to
// ReturnPath.
type LoginRequiredError struct {
	ReturnPath string
}

func (e *LoginRequiredError) Error() string {
	return fmt.Sprintf("login required (return to %s)", e.ReturnPath)
}

func (e *LoginRequiredError) Is(target error) bool {
	return target == ErrLoginRequired
}

// SuccessMessage is shown after a booking was created.
func SuccessMessage() string {
	return msgCreated
}

// ErrorMessage maps wizard and API errors to a displayable message.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrServiceRequired), errors.Is(err, ErrDateRequired), errors.Is(err, ErrTimeRequired):
		return msgFieldsRequired
	case errors.Is(err, ErrUnknownService):
		return msgUnknownService
	case errors.Is(err, ErrUnknownStaff):
		return msgUnknownStaff
	case errors.Is(err, ErrDateOutOfRange):
		return msgDateOutOfRange
	case errors.Is(err, ErrSlotUnavailable):
		return msgSlotUnavailable
	case errors.Is(err, ErrWizardNotStarted):
		return msgWizardNotStarted
	case errors.Is(err, ErrInvalidStep):
		return msgInvalidStep
	}
	return apiclient.MessageFrom(err, msgCreateFailed, "message", "time", "date", "service", "non_field_errors")
}

// IsValidation reports whether err is a wizard input error rather than
// a backend failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrServiceRequired, ErrDateRequired, ErrTimeRequired, ErrUnknownService,
		ErrUnknownStaff, ErrDateOutOfRange, ErrSlotUnavailable, ErrWizardNotStarted, ErrInvalidStep,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// LoadErrorMessage is shown when the business page cannot be loaded.
func LoadErrorMessage(err error) string {
	return apiclient.MessageFrom(err, msgLoadFailed)
}
