package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/identitykit"
	"github.com/dmitrymomot/identitykit/pkg/logger"
	"github.com/dmitrymomot/identitykit/pkg/redis"
	"github.com/dmitrymomot/identitykit/pkg/vault"
)

var errMasterKeyRequired = errors.New("VAULT_MASTER_KEY is required, generate one with keygen")

// session is a vault over Redis built from the environment.
type session struct {
	client *identitykit.Client
	vault  *vault.Vault
	health func(context.Context) error
	close  func() error
}

func openSession(ctx context.Context, log *slog.Logger) (*session, error) {
	vcfg, err := vault.LoadConfig()
	if err != nil {
		return nil, err
	}
	// Random per-process keys would not outlive the command.
	if vcfg.MasterKey == "" {
		return nil, errMasterKeyRequired
	}
	rcfg, err := redis.LoadConfig()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rdb, err := redis.Connect(ctx, rcfg)
	if err != nil {
		return nil, err
	}
	log.DebugContext(ctx, "redis connected",
		logger.Component("redis"),
		logger.Duration(time.Since(start)),
	)

	store, err := redis.NewStoreFromConfig(rdb, rcfg)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	v, err := vault.NewFromConfig(vcfg, store, log)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	c, err := identitykit.New(v, identitykit.WithLogger(log))
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &session{
		client: c,
		vault:  v,
		health: redis.Healthcheck(rdb),
		close:  rdb.Close,
	}, nil
}

func withSession(ctx context.Context, log *slog.Logger, fn func(*session) error) error {
	s, err := openSession(ctx, log)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()
	return fn(s)
}

func kindFlag(fs *flag.FlagSet) *string {
	return fs.String("kind", "access", "token kind: access or refresh")
}

func storeTokens(ctx context.Context, args []string, stdin io.Reader, log *slog.Logger) error {
	fs := flag.NewFlagSet("store", flag.ContinueOnError)
	refresh := fs.String("refresh", "", "refresh token (kept when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	access, err := readArg(fs, stdin)
	if err != nil {
		return err
	}

	return withSession(ctx, log, func(s *session) error {
		return s.client.SaveTokens(ctx, access, *refresh)
	})
}

func loadToken(ctx context.Context, args []string, stdout io.Writer, log *slog.Logger) error {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	kindName := kindFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	kind, err := vault.ParseKind(*kindName)
	if err != nil {
		return err
	}

	return withSession(ctx, log, func(s *session) error {
		token, err := s.vault.Open(ctx, kind)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, token)
		return nil
	})
}

func status(ctx context.Context, stdout io.Writer, log *slog.Logger) error {
	return withSession(ctx, log, func(s *session) error {
		if err := s.health(ctx); err != nil {
			return err
		}
		refresh, err := s.vault.Has(ctx, vault.Refresh)
		if err != nil {
			return err
		}
		_, access := s.client.AccessToken(ctx)

		fmt.Fprintln(stdout, "redis: ok")
		fmt.Fprintf(stdout, "access: %s\n", presence(access, "valid", "missing or expired"))
		fmt.Fprintf(stdout, "refresh: %s\n", presence(refresh, "present", "missing"))
		fmt.Fprintf(stdout, "needs_refresh: %t\n", s.client.NeedsRefresh(ctx))
		return nil
	})
}

func presence(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

func rotate(ctx context.Context, args []string, log *slog.Logger) error {
	fs := flag.NewFlagSet("rotate", flag.ContinueOnError)
	kindName := kindFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	kind, err := vault.ParseKind(*kindName)
	if err != nil {
		return err
	}

	return withSession(ctx, log, func(s *session) error {
		return s.vault.Rotate(ctx, kind)
	})
}

func logout(ctx context.Context, log *slog.Logger) error {
	return withSession(ctx, log, func(s *session) error {
		return s.client.Logout(ctx)
	})
}
