package email

import "context"

// ReferralConfirmation is what the referrer's confirmation needs.
type ReferralConfirmation struct {
	ReferrerName  string `json:"referrer_name"`
	ReferrerEmail string `json:"referrer_email"`
	RefereeName   string `json:"referee_name"`
	Course        string `json:"course"`
}

// SendReferralConfirmation thanks the referrer for referring someone.
func (c *Client) SendReferralConfirmation(ctx context.Context, r ReferralConfirmation) error {
	data := map[string]string{
		"ReferrerName": r.ReferrerName,
		"RefereeName":  r.RefereeName,
		"Course":       r.Course,
	}

	return c.SendEmail(ctx, r.ReferrerEmail, TemplateReferralConfirmation, data)
}
