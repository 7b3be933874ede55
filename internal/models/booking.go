package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BookingParty is the compact customer/business/service/staff shape
// embedded in booking payloads.
type BookingParty struct {
	ID          int64  `json:"id"`
	Name        string `json:"name,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Title       string `json:"title,omitempty"`

	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Price           Amount `json:"price,omitempty"`
	FinalPrice      Amount `json:"final_price,omitempty"`
}

// UnmarshalJSON also accepts a bare id, as returned by create endpoints.
func (p *BookingParty) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		if bytes.Equal(data, []byte("null")) {
			return nil
		}
		id, err := strconv.ParseInt(strings.Trim(string(data), `"`), 10, 64)
		if err != nil {
			return fmt.Errorf("booking party: %w", err)
		}
		*p = BookingParty{ID: id}
		return nil
	}
	type plain BookingParty
	return json.Unmarshal(data, (*plain)(p))
}

type Booking struct {
	ID                 int64         `json:"id"`
	Customer           *BookingParty `json:"customer,omitempty"`
	CustomerName       string        `json:"customer_name,omitempty"`
	CustomerPhone      string        `json:"customer_phone,omitempty"`
	Business           *BookingParty `json:"business,omitempty"`
	Service            *BookingParty `json:"service,omitempty"`
	Staff              *BookingParty `json:"staff,omitempty"`
	Date               string        `json:"date"`
	Time               string        `json:"time"`
	EndTime            string        `json:"end_time,omitempty"`
	DurationMinutes    int           `json:"duration_minutes,omitempty"`
	ServicePrice       Amount        `json:"service_price,omitempty"`
	FinalPrice         Amount        `json:"final_price,omitempty"`
	DiscountAmount     Amount        `json:"discount_amount,omitempty"`
	Status             string        `json:"status"`
	Notes              string        `json:"notes,omitempty"`
	IsCancelled        bool          `json:"is_cancelled,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	IsPaid             bool          `json:"is_paid"`
	CanCancel          bool          `json:"can_cancel"`
	HasReview          bool          `json:"has_review,omitempty"`
	CreatedAt          string        `json:"created_at,omitempty"`
}

// CustomerDisplayName falls back to the nested customer object when the
// flat field is absent.
func (b Booking) CustomerDisplayName() string {
	if b.CustomerName != "" {
		return b.CustomerName
	}
	if b.Customer == nil {
		return ""
	}
	if b.Customer.FullName != "" {
		return b.Customer.FullName
	}
	if b.Customer.FirstName != "" || b.Customer.LastName != "" {
		return b.Customer.FirstName + " " + b.Customer.LastName
	}
	return b.Customer.Name
}

func (b Booking) CustomerPhoneNumber() string {
	if b.CustomerPhone != "" {
		return b.CustomerPhone
	}
	if b.Customer == nil {
		return ""
	}
	if b.Customer.PhoneNumber != "" {
		return b.Customer.PhoneNumber
	}
	return b.Customer.Phone
}

func (b Booking) ServiceName() string {
	if b.Service == nil {
		return ""
	}
	return b.Service.Name
}

func (b Booking) StaffName() string {
	if b.Staff == nil {
		return ""
	}
	return b.Staff.Name
}

// BookingRequest is the body of POST /bookings/. Business keeps the
// route parameter verbatim.
type BookingRequest struct {
	Business string `json:"business"`
	Service  int64  `json:"service"`
	Staff    *int64 `json:"staff,omitempty"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Notes    string `json:"notes"`
}

type RescheduleRequest struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Staff *int64 `json:"staff,omitempty"`
}

type RateRequest struct {
	Rating         int    `json:"rating"`
	ServiceQuality int    `json:"service_quality,omitempty"`
	Cleanliness    int    `json:"cleanliness,omitempty"`
	StaffBehavior  int    `json:"staff_behavior,omitempty"`
	ValueForMoney  int    `json:"value_for_money,omitempty"`
	Title          string `json:"title,omitempty"`
	Comment        string `json:"comment,omitempty"`
}

type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Slot is a bookable time unit from the availability endpoint.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// SlotQuery selects the slots of one service on one day.
type SlotQuery struct {
	Service int64
	Staff   int64
	Date    string
}

type CalendarEvent struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Status   string `json:"status"`
	Customer string `json:"customer"`
	Service  string `json:"service"`
	Staff    string `json:"staff,omitempty"`
}
