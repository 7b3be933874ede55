package session

const (
	msgWelcome          = "خوش آمدید!"
	msgLoginFailed      = "خطا در ورود"
	msgRegisterFailed   = "خطا در ثبت‌نام"
	msgRegisterVerify   = "ثبت‌نام موفق! لطفاً شماره خود را تایید کنید"
	msgLoggedOut        = "با موفقیت خارج شدید"
	msgProfileUpdated   = "پروفایل با موفقیت بروزرسانی شد"
	msgProfileFailed    = "خطا در بروزرسانی پروفایل"
	msgBusinessUpdated  = "اطلاعات کسب‌وکار با موفقیت بروزرسانی شد"
	msgBusinessFailed   = "خطا در بروزرسانی"
	msgTooManyAttempts  = "تعداد تلاش‌های ورود بیش از حد مجاز است. لطفاً کمی بعد دوباره تلاش کنید"
	msgVerifyFailed     = "کد تایید نامعتبر است"
	msgPhoneVerified    = "شماره تلفن تایید شد"
	msgStorageFailed    = "خطا در ذخیره اطلاعات ورود"
	msgMissingPrincipal = "پاسخ سرور ناقص است"
)

// Field names whose first validation message is shown to the user.
var (
	loginFields           = []string{"phone_number", "password", "non_field_errors"}
	registerFields        = []string{"phone_number", "email", "password", "non_field_errors"}
	partnerRegisterFields = []string{"phone_number", "email", "password", "business_name", "non_field_errors"}
	otpFields             = []string{"code", "phone_number", "non_field_errors"}
)
