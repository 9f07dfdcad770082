package domain

import "time"

// User is an enrolled account. Enrollment is done from the admin CLI; the
// only credential is a TOTP secret, stored sealed.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	SealedSecret []byte     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// Touch updates the UpdatedAt timestamp.
func (u *User) Touch() {
	u.UpdatedAt = time.Now()
}

// MarkLogin records a successful login at t.
func (u *User) MarkLogin(t time.Time) {
	u.LastLoginAt = &t
	u.UpdatedAt = t
}
