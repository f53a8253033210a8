package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deppfellow/course-referral/internal/validation"
)

// Referral links a referrer, a referee and a course of interest.
// ID and CreatedAt are assigned by the store.
type Referral struct {
	ID            uuid.UUID `json:"id"`
	ReferrerName  string    `json:"referrerName"`
	ReferrerEmail string    `json:"referrerEmail"`
	RefereeName   string    `json:"refereeName"`
	RefereeEmail  string    `json:"refereeEmail"`
	Course        string    `json:"course"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CreateReferralPayload is the body of POST /api/referrals.
type CreateReferralPayload struct {
	ReferrerName  string `json:"referrerName" validate:"required,max=255"`
	ReferrerEmail string `json:"referrerEmail" validate:"required,email,max=255"`
	RefereeName   string `json:"refereeName" validate:"required,max=255"`
	RefereeEmail  string `json:"refereeEmail" validate:"required,email,max=255"`
	Course        string `json:"course" validate:"required,max=255"`
}

// Validate trims surrounding whitespace, so blank fields count as missing,
// then checks the struct tags.
func (p *CreateReferralPayload) Validate() error {
	p.ReferrerName = strings.TrimSpace(p.ReferrerName)
	p.ReferrerEmail = strings.TrimSpace(p.ReferrerEmail)
	p.RefereeName = strings.TrimSpace(p.RefereeName)
	p.RefereeEmail = strings.TrimSpace(p.RefereeEmail)
	p.Course = strings.TrimSpace(p.Course)

	return validation.Validator().Struct(p)
}

// GetReferralPayload identifies a referral by the :id path parameter.
type GetReferralPayload struct {
	ID string `param:"id" json:"id" validate:"required,uuid"`
}

func (p *GetReferralPayload) Validate() error {
	return validation.Validator().Struct(p)
}
