package partner

const (
	msgBookingsLoadFailed  = "خطا در بارگذاری رزروها"
	msgStatusChanged       = "وضعیت رزرو تغییر کرد"
	msgStatusChangeFailed  = "خطا در تغییر وضعیت"
	msgInvalidStatus       = "وضعیت نامعتبر است"
	msgInvalidDate         = "تاریخ نامعتبر است"
	msgExportFailed        = "خطا در ساخت فایل خروجی"
	msgServicesLoadFailed  = "خطا در بارگذاری خدمات"
	msgServiceUpdated      = "خدمت با موفقیت ویرایش شد"
	msgServiceCreated      = "خدمت با موفقیت اضافه شد"
	msgServiceSaveFailed   = "خطا در ذخیره خدمت"
	msgServiceDeleted      = "خدمت با موفقیت حذف شد"
	msgServiceDeleteFailed = "خطا در حذف خدمت"
	msgServiceToggled      = "وضعیت خدمت تغییر کرد"
	msgStaffLoadFailed     = "خطا در بارگذاری پرسنل"
	msgStaffUpdated        = "پرسنل با موفقیت ویرایش شد"
	msgStaffCreated        = "پرسنل با موفقیت اضافه شد"
	msgStaffSaveFailed     = "خطا در ذخیره پرسنل"
	msgStaffDeleted        = "پرسنل با موفقیت حذف شد"
	msgStaffDeleteFailed   = "خطا در حذف پرسنل"
	msgScheduleLoadFailed  = "خطا در بارگذاری برنامه کاری"
	msgScheduleSaved       = "ساعات کاری ذخیره شد"
	msgScheduleSaveFailed  = "خطا در ذخیره ساعات کاری"
	msgCustomersLoadFailed = "خطا در بارگذاری مشتریان"
	msgHistoryLoadFailed   = "خطا در بارگذاری تاریخچه"
	msgDashboardLoadFailed = "خطا در بارگذاری داشبورد"
	msgNameRequired        = "نام الزامی است"
)

// Field names whose first validation message is shown to the partner.
var (
	serviceFields = []string{"name", "price", "duration_minutes", "discounted_price", "non_field_errors"}
	staffFields   = []string{"name", "phone", "gender", "non_field_errors"}
)
