package mqpasswd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hengadev/errsx"

	"github.com/hengadev/mqpasswd/internal/monitoring"
	"github.com/hengadev/mqpasswd/passwdfile"
)

// Report lists what Generate changed, by username, in configuration order.
type Report struct {
	Added     []string
	Updated   []string
	Unchanged []string
	Removed   []string
}

// Changed reports whether the rendered file differs from the existing one.
func (r Report) Changed() bool {
	return len(r.Added)+len(r.Updated)+len(r.Removed) > 0
}

// Generator renders password files from a Config.
type Generator struct {
	encoder *Encoder
	sources map[string]PasswordSource
	logger  *slog.Logger
}

// NewGenerator builds a Generator. sources maps configuration source names
// (SourceEnv, SourceFile, SourceVault, SourceAWS) to their implementation.
func NewGenerator(encoder *Encoder, sources map[string]PasswordSource, logger *slog.Logger) (*Generator, error) {
	if encoder == nil {
		return nil, fmt.Errorf("%w: encoder cannot be nil", ErrInvalidConfiguration)
	}
	if logger == nil {
		logger = monitoring.Discard()
	}
	return &Generator{
		encoder: encoder,
		sources: sources,
		logger:  logger,
	}, nil
}

// Generate renders the password file described by cfg on top of existing, which may be nil.
//
// An existing digest is kept when it still verifies against the resolved password and
// does not need a rehash, so re-running with unchanged passwords leaves the file identical.
// With cfg.Prune, users missing from cfg are dropped. Failures for individual users are
// collected; if any occurs, no file is returned.
func (g *Generator) Generate(ctx context.Context, cfg *Config, existing *passwdfile.File) (*passwdfile.File, Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Report{}, err
	}

	out := passwdfile.New()
	if existing != nil {
		out = existing.Clone()
	}

	var (
		report Report
		errs   errsx.Map
		wanted = make(map[string]bool, len(cfg.Users))
	)

	for _, user := range cfg.Users {
		if err := ctx.Err(); err != nil {
			return nil, Report{}, err
		}
		wanted[user.Username] = true
		key := fmt.Sprintf("user '%s'", user.Username)

		source, ok := g.sources[user.Source]
		if !ok {
			errs.Set(key, fmt.Errorf("%w: no password source registered for '%s'", ErrInvalidConfiguration, user.Source))
			continue
		}

		password, err := source.Password(ctx, user.Ref)
		if err != nil {
			errs.Set(key, err)
			continue
		}

		current, exists := out.Lookup(user.Username)
		if exists && g.keep(user.Username, password, current) {
			report.Unchanged = append(report.Unchanged, user.Username)
			continue
		}

		digest, err := g.encoder.Encode(password)
		if err != nil {
			errs.Set(key, err)
			continue
		}
		if err := out.Set(user.Username, digest); err != nil {
			errs.Set(key, err)
			continue
		}

		if exists {
			report.Updated = append(report.Updated, user.Username)
		} else {
			report.Added = append(report.Added, user.Username)
		}
	}

	if !errs.IsEmpty() {
		return nil, Report{}, errs.AsError()
	}

	if cfg.Prune {
		for _, username := range out.Usernames() {
			if wanted[username] {
				continue
			}
			if err := out.Delete(username); err != nil {
				return nil, Report{}, err
			}
			report.Removed = append(report.Removed, username)
		}
	}

	g.logger.Info("password file rendered",
		slog.Int("users", out.Len()),
		slog.Int("added", len(report.Added)),
		slog.Int("updated", len(report.Updated)),
		slog.Int("unchanged", len(report.Unchanged)),
		slog.Int("removed", len(report.Removed)),
	)

	return out, report, nil
}

func (g *Generator) keep(username, password, digest string) bool {
	match, err := g.encoder.Verify(password, digest)
	if err != nil {
		g.logger.Warn("cannot reuse existing entry",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return false
	}
	if !match {
		return false
	}

	rehash, err := g.encoder.NeedsRehash(digest)
	if err != nil || rehash {
		g.logger.Debug("existing entry below current parameters", slog.String("username", username))
		return false
	}
	return true
}
