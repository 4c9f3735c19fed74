package codec

import "errors"

var (
	ErrCryptoUnavailable = errors.New("codec: hash primitive is not available")
	ErrInvalidBase64     = errors.New("codec: invalid base64 input")
	ErrNonASCII          = errors.New("codec: input contains non-ASCII characters")
	ErrInvalidUTF8       = errors.New("codec: input is not valid UTF-8")
)
