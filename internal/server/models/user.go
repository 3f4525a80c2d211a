package models

import "time"

// User is a row of the users table.
//
// ResetCode and ResetCodeExpires are both nil or both set; they are only
// present while a password reset is in flight.
type User struct {
	ID               int64      `db:"id" json:"id"`
	UserName         string     `db:"username" json:"username"`
	Email            string     `db:"email" json:"email"`
	Password         string     `db:"password" json:"-"`
	ResetCode        *string    `db:"reset_code" json:"-"`
	ResetCodeExpires *time.Time `db:"reset_code_expires" json:"-"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// HasValidResetCode reports whether code matches the stored reset code and
// the code has not expired at now.
func (u *User) HasValidResetCode(code string, now time.Time) bool {
	if u.ResetCode == nil || u.ResetCodeExpires == nil {
		return false
	}
	return *u.ResetCode == code && now.Before(*u.ResetCodeExpires)
}
