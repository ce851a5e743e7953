package domain

import "time"

// Session is the per-browser unlock context. It is owned by the session gate
// and only flips to redeemed through MarkRedeemed after a successful redemption.
type Session struct {
	ID           string     `json:"-"`
	RedeemedFlag bool       `json:"redeemed"`
	BoundCode    string     `json:"bound_code,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	RedeemedAt   *time.Time `json:"redeemed_at,omitempty"`
}

func (s *Session) MarkRedeemed(code string, at time.Time) {
	s.RedeemedFlag = true
	s.BoundCode = code
	t := at.UTC()
	s.RedeemedAt = &t
}

func (s *Session) Unlocked() bool {
	return s != nil && s.RedeemedFlag
}
