package auth

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTP parameters. These match what authenticator apps assume by default.
const (
	TOTPPeriod = 30
	TOTPDigits = otp.DigitsSix
)

// Enrollment is the result of generating a new TOTP secret.
type Enrollment struct {
	Secret string // base32, no padding
	URI    string // otpauth:// provisioning URI
}

// TOTPVerifier checks RFC 6238 codes with a fixed skew tolerance.
type TOTPVerifier struct {
	issuer string
	skew   uint
	now    func() time.Time
}

// NewTOTPVerifier creates a verifier. skew is the number of periods accepted
// either side of the current one.
func NewTOTPVerifier(issuer string, skew uint) *TOTPVerifier {
	return &TOTPVerifier{issuer: issuer, skew: skew, now: time.Now}
}

// Skew returns the configured skew tolerance in periods.
func (v *TOTPVerifier) Skew() uint {
	return v.skew
}

// Enroll generates a fresh secret for accountName.
func (v *TOTPVerifier) Enroll(accountName string) (*Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      v.issuer,
		AccountName: accountName,
		Period:      TOTPPeriod,
		Digits:      TOTPDigits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}
	return &Enrollment{Secret: key.Secret(), URI: key.URL()}, nil
}

// Verify checks code against secret at the current time.
func (v *TOTPVerifier) Verify(secret, code string) bool {
	return v.VerifyAt(secret, code, v.now())
}

// VerifyAt checks code against secret at t. Malformed codes and undecodable
// secrets are plain mismatches.
func (v *TOTPVerifier) VerifyAt(secret, code string, t time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, t.UTC(), v.opts())
	return err == nil && ok
}

// CodeAt returns the expected code for secret at t.
func (v *TOTPVerifier) CodeAt(secret string, t time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, t.UTC(), v.opts())
	if err != nil {
		return "", fmt.Errorf("generate totp code: %w", err)
	}
	return code, nil
}

func (v *TOTPVerifier) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    TOTPPeriod,
		Skew:      v.skew,
		Digits:    TOTPDigits,
		Algorithm: otp.AlgorithmSHA1,
	}
}
