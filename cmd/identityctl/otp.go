package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/identitykit/pkg/clock"
	"github.com/dmitrymomot/identitykit/pkg/otp"
)

func readEnrollment(path string) (otp.Enrollment, error) {
	if path == "" {
		return otp.Enrollment{}, errors.New("enrollment file is required (-f)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return otp.Enrollment{}, err
	}
	// YAML is a superset of JSON, so one decoder reads both formats.
	var e otp.Enrollment
	if err := yaml.Unmarshal(data, &e); err != nil {
		return otp.Enrollment{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return e, nil
}

func clockAt(unix int64) clock.Clock {
	if unix == 0 {
		return clock.System()
	}
	return clock.NewMock(time.Unix(unix, 0))
}

func otpCode(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("otp", flag.ContinueOnError)
	file := fs.String("f", "", "enrollment file")
	at := fs.Int64("at", 0, "unix time to compute the code for (default now)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := readEnrollment(*file)
	if err != nil {
		return err
	}
	code, err := e.Code(clockAt(*at))
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, code)
	return nil
}

func otpQR(args []string) error {
	cfg, err := otp.LoadConfig()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("otp-qr", flag.ContinueOnError)
	file := fs.String("f", "", "enrollment file")
	out := fs.String("o", "otp.png", "output PNG path")
	size := fs.Int("size", cfg.QRSize, "image size in pixels (OTP_QR_SIZE)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := readEnrollment(*file)
	if err != nil {
		return err
	}
	key, err := e.KeyURI()
	if err != nil {
		return err
	}
	uri, err := key.Encode()
	if err != nil {
		return err
	}
	png, err := otp.QRCode(uri, *size)
	if err != nil {
		return err
	}
	return os.WriteFile(*out, png, 0o600)
}

func otpVerify(args []string, stdout io.Writer) error {
	cfg, err := otp.LoadConfig()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	file := fs.String("f", "", "enrollment file")
	skew := fs.Int("skew", cfg.VerifySkew, "windows accepted either side of now (OTP_VERIFY_SKEW)")
	at := fs.Int64("at", 0, "unix time to verify at (default now)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	code := fs.Arg(0)
	if code == "" {
		return errors.New("code is required")
	}

	e, err := readEnrollment(*file)
	if err != nil {
		return err
	}
	ok, err := e.Verify(code, clockAt(*at), *skew)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintln(stdout, "valid")
	} else {
		fmt.Fprintln(stdout, "invalid")
	}
	return nil
}
