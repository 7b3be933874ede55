package booking

import (
	"context"
	"strconv"
	"sync"
	"time"

	"farsha/internal/models"
)

// Step is the wizard page: service, time, confirmation.
type Step int

const (
	StepService Step = 1
	StepTime    Step = 2
	StepConfirm Step = 3
)

type slotKey struct {
	service int64
	staff   int64
	date    string
}

// slotFetch is one in-flight availability request. A fetch whose key
// is no longer the wizard's current key is discarded on arrival.
type slotFetch struct {
	key    slotKey
	cancel context.CancelFunc
	done   chan struct{}
}

// wizard is the booking progress of one visitor for one business.
type wizard struct {
	businessID string
	business   *models.Business
	services   []models.Service
	staff      []models.Staff

	step    Step
	service *models.Service
	member  *models.Staff
	date    string
	time    string
	notes   string

	slots       []models.Slot
	slotsFor    slotKey
	slotsLoaded bool
	slotsError  string
	fetch       *slotFetch

	lastSeen time.Time
}

func (w *wizard) findService(id int64) *models.Service {
	for i := range w.services {
		if w.services[i].ID == id {
			s := w.services[i]
			return &s
		}
	}
	return nil
}

func (w *wizard) findStaff(id int64) *models.Staff {
	for i := range w.staff {
		if w.staff[i].ID == id {
			m := w.staff[i]
			return &m
		}
	}
	return nil
}

func (w *wizard) currentKey() (slotKey, bool) {
	if w.service == nil || w.date == "" {
		return slotKey{}, false
	}
	k := slotKey{service: w.service.ID, date: w.date}
	if w.member != nil {
		k.staff = w.member.ID
	}
	return k, true
}

func (w *wizard) slotAvailable(label string) bool {
	for _, s := range w.slots {
		if s.Time == label {
			return s.Available
		}
	}
	return false
}

func (w *wizard) stopFetch() {
	if w.fetch != nil {
		w.fetch.cancel()
		w.fetch = nil
	}
}

// Day is one selectable date of the booking window.
type Day struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
}

var weekdayNames = [...]string{"یکشنبه", "دوشنبه", "سه‌شنبه", "چهارشنبه", "پنج‌شنبه", "جمعه", "شنبه"}

// View is the wizard page model.
type View struct {
	BusinessID   string           `json:"business_id"`
	Business     *models.Business `json:"business"`
	Services     []models.Service `json:"services"`
	Staff        []models.Staff   `json:"staff"`
	Step         Step             `json:"step"`
	Service      *models.Service  `json:"selected_service"`
	Member       *models.Staff    `json:"selected_staff"`
	Date         string           `json:"selected_date"`
	Time         string           `json:"selected_time"`
	Notes        string           `json:"notes"`
	Days         []Day            `json:"days"`
	Slots        []models.Slot    `json:"slots"`
	SlotsLoading bool             `json:"slots_loading"`
	SlotsError   string           `json:"slots_error,omitempty"`
}

func (w *wizard) view(days []Day) *View {
	v := &View{
		BusinessID:   w.businessID,
		Business:     w.business,
		Services:     w.services,
		Staff:        w.staff,
		Step:         w.step,
		Service:      w.service,
		Member:       w.member,
		Date:         w.date,
		Time:         w.time,
		Notes:        w.notes,
		Days:         days,
		Slots:        append([]models.Slot(nil), w.slots...),
		SlotsLoading: w.fetch != nil,
		SlotsError:   w.slotsError,
	}
	if v.Slots == nil {
		v.Slots = []models.Slot{}
	}
	return v
}

// ReturnPath is where a visitor sent to login comes back to.
func ReturnPath(businessID string) string {
	return "/booking/" + businessID
}

// wizards holds one wizard per visitor.
type wizards struct {
	mu sync.Mutex
	m  map[string]*wizard
}

func newWizards() *wizards {
	return &wizards{m: make(map[string]*wizard)}
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}
