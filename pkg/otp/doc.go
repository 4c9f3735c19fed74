// Package otp generates and verifies HMAC-based (RFC 4226) and time-based
// (RFC 6238) one-time passwords for devices enrolled as authenticators.
//
// A Spec bundles the algorithm, raw secret, digit count and period. It is
// validated once on construction; HOTP, TOTP and Verify are then pure
// functions of the Spec, a counter or a clock.
//
//	spec, err := otp.NewSpec(otp.SHA1, []byte(secret), 6, 30)
//	if err != nil {
//		return err
//	}
//	code, err := otp.TOTP(spec, clock.System())
//
// Enrollment profiles arrive from the identity service with a numeric
// algorithm code (0 SHA1, 1 SHA256, 2 SHA512, 3 MD5) and a secret whose
// UTF-8 bytes are the HMAC key:
//
//	code, err := enrollment.Code(clock.System())
//
// MD5 produces a 16-byte digest, so dynamic truncation can select a window
// that runs past its end. HOTP reports ErrTruncationOutOfRange in that case
// rather than reading out of bounds.
//
// Key URIs in the otpauth:// format used by authenticator apps are built
// with URI or KeyURI.Encode, parsed with ParseURI, and rendered as PNG with
// QRCode.
package otp
