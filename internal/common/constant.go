package common

// AccessTokenHeaderName is the HTTP header used to carry the access token
// on authenticated requests.
const AccessTokenHeaderName = "Authorization"

// OTP purposes recognized by the service layer. The purpose is part of the
// code's storage key, so a code issued for one purpose never validates for
// another.
const (
	OTPPurposePasswordReset = "password_reset"
)
