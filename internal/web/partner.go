package web

import (
	"net/http"
	"strconv"
	"strings"

	"farsha/internal/models"
	"farsha/internal/session"

	"github.com/go-chi/chi/v5"
)

var partnerNS = session.PartnerNamespace

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handlePartnerLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := decode(r, &form); err != nil {
		badRequest(w)
		return
	}
	res := s.deps.Partners.Login(r.Context(), session.VisitorFrom(r.Context()), form.Credentials)
	sessionResult(w, res, form.next(r, partnerNS.HomePath))
}

func (s *Server) handlePartnerRegister(w http.ResponseWriter, r *http.Request) {
	var req models.PartnerRegisterRequest
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}
	res := s.deps.Partners.Register(r.Context(), session.VisitorFrom(r.Context()), req)
	location := partnerNS.HomePath
	if res.Outcome != session.OutcomeSignedIn {
		location = partnerNS.LoginPath
	}
	sessionResult(w, res, location)
}

func (s *Server) handlePartnerLogout(w http.ResponseWriter, r *http.Request) {
	res := s.deps.Partners.Logout(r.Context(), session.VisitorFrom(r.Context()))
	sessionResult(w, res, partnerNS.LoginPath)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Partner.Dashboard(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		s.fail(w, r, partnerNS, err)
		return
	}
	writeData(w, v)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	v, err := s.deps.Partner.Calendar(r.Context(), r.URL.Query().Get("date"), s.now())
	if err != nil {
		s.fail(w, r, partnerNS, err)
		return
	}
	writeData(w, v)
}

func (s *Server) handlePartnerBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v, err := s.deps.Partner.Bookings(r.Context(), q.Get("tab"), q.Get("q"))
	if err != nil {
		s.fail(w, r, partnerNS, err)
		return
	}
	writeData(w, v)
}

func (s *Server) handlePartnerBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w)
		return
	}
	v, err := s.deps.Partner.Booking(r.Context(), id)
	if err != nil {
		s.fail(w, r, partnerNS, err)
		return
	}
	writeData(w, v)
}

type statusForm struct {
	Status string `json:"status"`
}

func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	var form statusForm
	if !ok || decode(r, &form) != nil {
		badRequest(w)
		return
	}
	q := r.URL.Query()
	v, msg, err := s.deps.Partner.ChangeStatus(r.Context(), session.VisitorFrom(r.Context()), id, form.Status, q.Get("tab"), q.Get("q"))
	s.writeDone(w, r, partnerNS, v, msg, err)
}

func (s *Server) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	export, err := s.deps.Partner.ExportBookings(r.Context(), q.Get("tab"), q.Get("q"), s.now())
	if err != nil {
		s.fail(w, r, partnerNS, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Partner.Services(r.Context())
	if err != nil {
		s.fail(w, r, partnerNS, err)
		return
	}
	writeData(w, list)
}

// optionalID reads {id}; routes without one create.
func optionalID(r *http.Request) (int64, bool) {
	if chi.URLParam(r, "id") == "" {
		return 0, true
	}
	return idParam(r, "id")
}

func (s *Server) handleSaveService(w http.ResponseWriter, r *http.Request) {
	id, ok := optionalID(r)
	var in models.ServiceInput
	if !ok || decode(r, &in) != nil {
		badRequest(w)
		return
	}
	list, msg, err := s.deps.Partner.SaveService(r.Context(), id, in)
	s.writeDone(w, r, partnerNS, list, msg, err)
}

func (s *Server) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w)
		return
	}
	list, msg, err := s.deps.Partner.DeleteService(r.Context(), id)
	s.writeDone(w, r, partnerNS, list, msg, err)
}

func (s *Server) handleToggleService(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w)
		return
	}
	list, msg, err := s.deps.Partner.ToggleService(r.Context(), id)
	s.writeDone(w, r, partnerNS, list, msg, err)
}

func (s *Server) handleStaff(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Partner.Staff(r.Context())
	if err != nil {
		s.fail(w, r, partnerNS, err)
		return
	}
	writeData(w, list)
}

func (s *Server) handleSaveStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := optionalID(r)
	var in models.StaffInput
	if !ok || decode(r, &in) != nil {
		badRequest(w)
		return
	}
	list, msg, err := s.deps.Partner.SaveStaff(r.Context(), id, in)
	s.writeDone(w, r, partnerNS, list, msg, err)
}

func (s *Server) handleDeleteStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w)
		return
	}
	list, msg, err := s.deps.Partner.DeleteStaff(r.Context(), id)
	s.writeDone(w, r, partnerNS, list, msg, err)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w)
		return
	}
	list, err := s.deps.Partner.Schedule(r.Context(), id, r.URL.Query().Get("week"))
	if err != nil {
		s.fail(w, r, partnerNS, err)
		return
	}
	writeData(w, list)
}

func (s *Server) handleSaveSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	var schedule []models.StaffSchedule
	if !ok || decode(r, &schedule) != nil {
		badRequest(w)
		return
	}
	list, msg, err := s.deps.Partner.SaveSchedule(r.Context(), id, schedule)
	s.writeDone(w, r, partnerNS, list, msg, err)
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Partner.Customers(r.Context(), strings.TrimSpace(r.URL.Query().Get("search")))
	if err != nil {
		s.fail(w, r, partnerNS, err)
		return
	}
	writeData(w, list)
}

func (s *Server) handleCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		badRequest(w)
		return
	}
	v, err := s.deps.Partner.Customer(r.Context(), id)
	if err != nil {
		s.fail(w, r, partnerNS, err)
		return
	}
	writeData(w, v)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	writeData(w, SessionFrom[models.Partner](r.Context()).Business)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var upd models.BusinessUpdate
	if err := decode(r, &upd); err != nil {
		badRequest(w)
		return
	}
	visitor := session.VisitorFrom(r.Context())
	res := s.deps.Partners.Update(r.Context(), visitor, upd)
	st := s.deps.Partners.Snapshot(visitor)
	switch {
	case !st.Authenticated():
		s.toLogin(w, r, partnerNS)
	case !res.Success:
		sessionResult(w, res, "")
	default:
		writeJSON(w, http.StatusOK, Response{Data: st.Session.Business, Toast: toast(LevelSuccess, res.Message)})
	}
}
