package models

import "time"

// User represents one registrant of the anonymous-messaging service.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security

	// Verification fields. The code is only meaningful while the user is
	// unverified; a successful verification clears all three.
	VerifyCode       string     `json:"-" gorm:"type:varchar(10)"`
	VerifyCodeExpiry *time.Time `json:"-"`
	LastCodeSentAt   *time.Time `json:"-"`

	IsVerified          bool `json:"isVerified" gorm:"default:false"`
	IsAcceptingMessages bool `json:"isAcceptingMessages" gorm:"default:true"`

	Messages []Message `json:"messages,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CodeExpired reports whether the stored verification code is unusable at t.
// A missing expiry counts as expired, so a record without a code can never verify.
func (u *User) CodeExpired(t time.Time) bool {
	return u.VerifyCodeExpiry == nil || !t.Before(*u.VerifyCodeExpiry)
}
