package models

import "strings"

type User struct {
	ID          int64  `json:"id"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	FullName    string `json:"full_name,omitempty"`
	UserType    string `json:"user_type,omitempty"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	IsVerified  bool   `json:"is_verified"`
	DateJoined  string `json:"date_joined,omitempty"`
}

// DisplayName prefers the server-computed full name.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.PhoneNumber
	}
	return name
}

// Partner is the business owner signed in to the partner panel.
type Partner struct {
	User
}

// Credentials is the login payload shared by customers and partners.
type Credentials struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

type RegisterRequest struct {
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	Email           string `json:"email,omitempty"`
}

// PartnerRegisterRequest combines owner and business data.
type PartnerRegisterRequest struct {
	OwnerName       string `json:"owner_name"`
	PhoneNumber     string `json:"phone_number"`
	Email           string `json:"email,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
	BusinessName    string `json:"business_name"`
	CategoryID      int64  `json:"category"`
	CityID          int64  `json:"city"`
	Address         string `json:"address"`
	Description     string `json:"description,omitempty"`
}

type ProfileUpdate struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type OTPRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code,omitempty"`
}

type ResetPasswordRequest struct {
	PhoneNumber     string `json:"phone_number"`
	Code            string `json:"code"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Identity is the numeric id used in session events.
func (u User) Identity() int64 {
	return u.ID
}
