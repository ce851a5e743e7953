package domain

import "time"

type CodeState string

const (
	CodeStateUnredeemed CodeState = "unredeemed"
	CodeStateRedeemed   CodeState = "redeemed"
)

// Code is a single-use unlock code. State moves from unredeemed to redeemed
// exactly once; RedeemedAt is set in the same write and is nil otherwise.
type Code struct {
	Value      string     `gorm:"column:code;primaryKey;size:64" json:"code"`
	State      CodeState  `gorm:"size:16;index;not null" json:"state"`
	RedeemedAt *time.Time `gorm:"index" json:"redeemed_at,omitempty"`
	Batch      string     `gorm:"size:64;index;not null" json:"batch"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (Code) TableName() string { return "codes" }

func (c Code) IsRedeemed() bool {
	return c.State == CodeStateRedeemed
}

type CodeStats struct {
	Total      int64 `json:"total"`
	Redeemed   int64 `json:"redeemed"`
	Unredeemed int64 `json:"unredeemed"`
}

func NewCodeStats(total, redeemed int64) CodeStats {
	unredeemed := total - redeemed
	if unredeemed < 0 {
		unredeemed = 0
	}
	return CodeStats{Total: total, Redeemed: redeemed, Unredeemed: unredeemed}
}
