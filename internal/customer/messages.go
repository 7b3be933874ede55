package customer

const (
	msgLoadFailed          = "خطا در بارگذاری اطلاعات"
	msgSearchFailed        = "خطا در جستجو"
	msgBookingsLoadFailed  = "خطا در بارگذاری رزروها"
	msgCancelled           = "رزرو با موفقیت لغو شد"
	msgCancelFailed        = "خطا در لغو رزرو"
	msgRescheduled         = "زمان رزرو با موفقیت تغییر کرد"
	msgRescheduleFailed    = "خطا در تغییر زمان رزرو"
	msgRated               = "نظر شما با موفقیت ثبت شد"
	msgRateFailed          = "خطا در ثبت نظر"
	msgInvalidRating       = "امتیاز باید بین 1 تا 5 باشد"
	msgRescheduleRequired  = "تاریخ و ساعت جدید را انتخاب کنید"
	msgPasswordMismatch    = "رمز عبور جدید و تکرار آن مطابقت ندارند"
	msgPasswordChanged     = "رمز عبور با موفقیت تغییر کرد"
	msgPasswordFailed      = "خطا در تغییر رمز عبور"
	msgCodeSent            = "کد بازیابی ارسال شد"
	msgCodeSendFailed      = "خطا در ارسال کد"
	msgOTPSent             = "کد تایید ارسال شد"
	msgPhoneRequired       = "شماره تلفن الزامی است"
	msgPhoneInvalid        = "شماره تلفن نامعتبر است"
	msgCodeRequired        = "کد الزامی است"
	msgPasswordRequired    = "رمز عبور الزامی است"
	msgPasswordTooShort    = "رمز عبور باید حداقل 8 کاراکتر باشد"
	msgPasswordNotSame     = "رمز عبور یکسان نیست"
	msgCurrentPasswordNeed = "رمز عبور فعلی الزامی است"
)

var (
	changePasswordFields = []string{"old_password", "new_password", "confirm_password", "non_field_errors"}
	rescheduleFields     = []string{"date", "time", "non_field_errors"}
	rateFields           = []string{"rating", "comment", "non_field_errors"}
	cancelFields         = []string{"reason", "non_field_errors"}
)
