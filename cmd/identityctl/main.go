package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dmitrymomot/identitykit/pkg/config"
	"github.com/dmitrymomot/identitykit/pkg/jwt"
	"github.com/dmitrymomot/identitykit/pkg/logger"
	"github.com/dmitrymomot/identitykit/pkg/pkce"
	"github.com/dmitrymomot/identitykit/pkg/vault"
)

const usage = `usage: identityctl <command> [flags]

commands:
  keygen    print a base64 master key for VAULT_MASTER_KEY
  pkce      print a PKCE verifier, challenge and state as JSON
  otp       print the current code for an enrollment file (JSON or YAML)
  otp-qr    write an otpauth:// QR code PNG for an enrollment file
  verify    check a one-time code against an enrollment file
  token     report whether a JWT is still valid

vault commands (VAULT_* and REDIS_* environment):
  store     encrypt and store an access token and optional refresh token
  load      print a stored token
  status    report stored tokens and Redis health
  rotate    re-encrypt a stored token under a fresh key
  logout    remove both tokens
`

type appConfig struct {
	Env string `env:"APP_ENV" envDefault:"development"`
}

type commandKey struct{}

func main() {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "identityctl"),
		logger.WithOutput(os.Stderr),
		logger.WithContextValue("command", commandKey{}),
	)
	logger.SetAsDefault(log)

	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, log); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Error("command failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, log *slog.Logger) error {
	log = logger.OrDiscard(log)
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return flag.ErrHelp
	}

	cmd, rest := args[0], args[1:]
	ctx = context.WithValue(ctx, commandKey{}, cmd)

	switch cmd {
	case "keygen":
		return keygen(stdout)
	case "pkce":
		return pkcePair(stdout)
	case "otp":
		return otpCode(rest, stdout)
	case "otp-qr":
		return otpQR(rest)
	case "verify":
		return otpVerify(rest, stdout)
	case "token":
		return tokenCheck(ctx, rest, stdin, stdout, log)
	case "store":
		return storeTokens(ctx, rest, stdin, log)
	case "load":
		return loadToken(ctx, rest, stdout, log)
	case "status":
		return status(ctx, stdout, log)
	case "rotate":
		return rotate(ctx, rest, log)
	case "logout":
		return logout(ctx, log)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func keygen(stdout io.Writer) error {
	key, err := vault.GenerateEncodedMasterKey()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, key)
	return nil
}

func pkcePair(stdout io.Writer) error {
	pair, err := pkce.New()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(pair)
}

// readArg returns the first positional argument, or the trimmed contents of
// stdin when it is missing or "-".
func readArg(fs *flag.FlagSet, stdin io.Reader) (string, error) {
	v := fs.Arg(0)
	if v == "" || v == "-" {
		data, err := io.ReadAll(io.LimitReader(stdin, 64<<10))
		if err != nil {
			return "", err
		}
		v = string(data)
	}
	return strings.TrimSpace(v), nil
}

func tokenCheck(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, log *slog.Logger) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	leeway := fs.Duration("leeway", 0, "accepted clock drift")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := readArg(fs, stdin)
	if err != nil {
		return err
	}

	eval := jwt.New(jwt.WithLogger(log), jwt.WithLeeway(*leeway))
	claims, err := eval.Claims(token)
	if err != nil {
		log.InfoContext(ctx, "token is not valid", logger.Error(err))
		fmt.Fprintln(stdout, "invalid")
		return nil
	}
	fmt.Fprintf(stdout, "valid until %s\n", claims.ExpiresAt.UTC().Format(time.RFC3339))
	return nil
}
