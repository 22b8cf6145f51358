package dto

import (
	"time"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// InitiateLoginRequest is the body of POST /auth/initiate.
type InitiateLoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}

// InitiateLoginResponse is returned by POST /auth/initiate.
type InitiateLoginResponse struct {
	PresentationID string `json:"presentationId"`
	Status         string `json:"status"`
}

// LoginStatusResponse is returned by GET /auth/status/{presentationId}.
type LoginStatusResponse struct {
	Status string `json:"status"`
}

// VerifyLoginRequest is the body of POST /auth/verify.
type VerifyLoginRequest struct {
	PresentationID string `json:"presentationId" binding:"required"`
}

// EmployeeView is the public-facing projection of a Session's employee
// fields, shared by the verify and profile responses.
type EmployeeView struct {
	EmployeeDID string `json:"employeeDID"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Department  string `json:"department"`
}

// TrainingView is the public-facing projection of a Session's CIS training
// fields.
type TrainingView struct {
	Completed  bool       `json:"completed"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
}

// VerifyLoginResponse is returned by POST /auth/verify.
type VerifyLoginResponse struct {
	SessionToken string       `json:"sessionToken"`
	Employee     EmployeeView `json:"employee"`
	Training     TrainingView `json:"training"`
}

// ProfileResponse is returned by GET /profile.
type ProfileResponse struct {
	Employee  EmployeeView `json:"employee"`
	Clearance string       `json:"clearance"`
	Training  TrainingView `json:"training"`
}

// NewEmployeeView projects a Session's employee fields.
func NewEmployeeView(s *entity.Session) EmployeeView {
	return EmployeeView{
		EmployeeDID: s.EmployeeDID,
		FullName:    s.FullName,
		Email:       s.Email,
		Role:        s.Role,
		Department:  s.Department,
	}
}

// NewTrainingView projects a Session's CIS training fields.
func NewTrainingView(s *entity.Session) TrainingView {
	return TrainingView{Completed: s.HasTraining, ExpiryDate: s.TrainingExpiryDate}
}
