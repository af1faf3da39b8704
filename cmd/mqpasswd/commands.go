package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hengadev/mqpasswd"
	"github.com/hengadev/mqpasswd/internal/monitoring"
	"github.com/hengadev/mqpasswd/passwdfile"
	s3bucket "github.com/hengadev/mqpasswd/providers/s3"
)

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

// parse returns an exit code and false when the command should stop.
func (c *cli) parse(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK, false
		}
		return exitUsage, false
	}
	return exitOK, true
}

func (c *cli) fail(format string, args ...any) int {
	fmt.Fprintf(c.stderr, format+"\n", args...)
	return exitFailure
}

// logger builds a logger from the MQPASSWD_LOG_* variables.
func (c *cli) logger(component, level, format string) (*slog.Logger, error) {
	lvl, err := monitoring.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", mqpasswd.ErrInvalidConfiguration, err)
	}
	logFormat, err := monitoring.ParseFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", mqpasswd.ErrInvalidConfiguration, err)
	}
	return monitoring.NewLogger(monitoring.LoggerConfig{
		Level:     lvl,
		Format:    logFormat,
		Output:    c.stderr,
		Component: component,
	}), nil
}

func (c *cli) envLogger(component string) (*slog.Logger, error) {
	return c.logger(component, os.Getenv(mqpasswd.EnvLogLevel), os.Getenv(mqpasswd.EnvLogFormat))
}

// readPassword returns flagValue when set, otherwise the first line of stdin.
func (c *cli) readPassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

func (c *cli) hashCommand(args []string) int {
	fs := c.flagSet("hash")
	password := fs.String("password", "", "Password to hash (default: read from stdin)")
	iterations := fs.Int("iterations", mqpasswd.DefaultIterations, "PBKDF2 iteration count")
	saltLength := fs.Int("salt-length", mqpasswd.DefaultSaltLength, "Salt length in bytes")
	if code, ok := c.parse(fs, args); !ok {
		return code
	}

	logger, err := c.envLogger("hash")
	if err != nil {
		return c.fail("Invalid logging configuration: %v", err)
	}
	encoder, err := mqpasswd.NewEncoder(
		mqpasswd.WithParams(mqpasswd.Params{Iterations: *iterations, SaltLength: *saltLength}),
		mqpasswd.WithLogger(logger),
	)
	if err != nil {
		return c.fail("Invalid parameters: %v", err)
	}

	pw, err := c.readPassword(*password)
	if err != nil {
		return c.fail("%v", err)
	}
	digest, err := encoder.Encode(pw)
	if err != nil {
		return c.fail("Hashing failed: %v", err)
	}

	fmt.Fprintln(c.stdout, digest)
	return exitOK
}

func (c *cli) verifyCommand(args []string) int {
	fs := c.flagSet("verify")
	file := fs.String("file", "", "Path to the password file")
	user := fs.String("user", "", "Username to check")
	password := fs.String("password", "", "Password to check (default: read from stdin)")
	if code, ok := c.parse(fs, args); !ok {
		return code
	}
	if *file == "" || *user == "" {
		fmt.Fprintln(c.stderr, "verify requires -file and -user")
		return exitUsage
	}

	passwords, err := passwdfile.Load(*file)
	if err != nil {
		return c.fail("Failed to load password file: %v", err)
	}
	digest, ok := passwords.Lookup(*user)
	if !ok {
		return c.fail("User %s not found in %s", *user, *file)
	}

	pw, err := c.readPassword(*password)
	if err != nil {
		return c.fail("%v", err)
	}
	match, err := mqpasswd.Verify(pw, digest)
	if err != nil {
		return c.fail("Verification failed: %v", err)
	}
	if !match {
		return c.fail("Password does not match for %s", *user)
	}

	fmt.Fprintf(c.stdout, "Password matches for %s\n", *user)
	return exitOK
}

func (c *cli) setCommand(args []string) int {
	fs := c.flagSet("set")
	file := fs.String("file", "", "Path to the password file")
	user := fs.String("user", "", "Username to add or update")
	password := fs.String("password", "", "Password to store (default: read from stdin)")
	if code, ok := c.parse(fs, args); !ok {
		return code
	}
	if *file == "" || *user == "" {
		fmt.Fprintln(c.stderr, "set requires -file and -user")
		return exitUsage
	}

	logger, err := c.envLogger("set")
	if err != nil {
		return c.fail("Invalid logging configuration: %v", err)
	}
	encoder, err := mqpasswd.NewEncoder(mqpasswd.WithLogger(logger))
	if err != nil {
		return c.fail("%v", err)
	}

	passwords, err := passwdfile.Load(*file)
	if err != nil {
		return c.fail("Failed to load password file: %v", err)
	}
	pw, err := c.readPassword(*password)
	if err != nil {
		return c.fail("%v", err)
	}
	digest, err := encoder.Encode(pw)
	if err != nil {
		return c.fail("Hashing failed: %v", err)
	}
	if err := passwords.Set(*user, digest); err != nil {
		return c.fail("%v", err)
	}
	if err := passwords.Save(*file); err != nil {
		return c.fail("Failed to save password file: %v", err)
	}

	logger.Info("user updated", "file", *file, "username", *user)
	return exitOK
}

func (c *cli) deleteCommand(args []string) int {
	fs := c.flagSet("delete")
	file := fs.String("file", "", "Path to the password file")
	user := fs.String("user", "", "Username to remove")
	if code, ok := c.parse(fs, args); !ok {
		return code
	}
	if *file == "" || *user == "" {
		fmt.Fprintln(c.stderr, "delete requires -file and -user")
		return exitUsage
	}

	passwords, err := passwdfile.Load(*file)
	if err != nil {
		return c.fail("Failed to load password file: %v", err)
	}
	if err := passwords.Delete(*user); err != nil {
		return c.fail("%v", err)
	}
	if err := passwords.Save(*file); err != nil {
		return c.fail("Failed to save password file: %v", err)
	}
	return exitOK
}

func (c *cli) generateCommand(args []string) int {
	fs := c.flagSet("generate")
	configPath := fs.String("config", mqpasswd.DefaultConfigPath, "Path to configuration file")
	dryRun := fs.Bool("dry-run", false, "Print the rendered file instead of writing it")
	publish := fs.Bool("publish", false, "Upload the rendered file to the configured S3 location")
	if code, ok := c.parse(fs, args); !ok {
		return code
	}

	cfg, err := mqpasswd.LoadConfig(*configPath)
	if err != nil {
		return c.fail("Failed to load config: %v", err)
	}
	if err := mqpasswd.ApplyEnvironment(cfg); err != nil {
		return c.fail("Failed to apply environment: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return c.fail("Configuration validation failed: %v", err)
	}
	if *publish && cfg.Publish == nil {
		return c.fail("Configuration has no publish section")
	}

	logger, err := c.logger("generate", cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return c.fail("Invalid logging configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	encoder, err := mqpasswd.NewEncoder(
		mqpasswd.WithParams(cfg.Params),
		mqpasswd.WithLogger(logger),
	)
	if err != nil {
		return c.fail("%v", err)
	}
	sources, err := buildSources(ctx, cfg, logger)
	if err != nil {
		return c.fail("Failed to configure password sources: %v", err)
	}
	generator, err := mqpasswd.NewGenerator(encoder, sources, logger)
	if err != nil {
		return c.fail("%v", err)
	}

	existing, err := passwdfile.Load(cfg.Output)
	if err != nil {
		return c.fail("Failed to load password file: %v", err)
	}
	rendered, report, err := generator.Generate(ctx, cfg, existing)
	if err != nil {
		return c.fail("Generation failed: %v", err)
	}

	if *dryRun {
		if _, err := rendered.WriteTo(c.stdout); err != nil {
			return c.fail("%v", err)
		}
	} else if report.Changed() {
		if err := rendered.Save(cfg.Output); err != nil {
			return c.fail("Failed to save password file: %v", err)
		}
	}

	fmt.Fprintf(c.stderr, "added=%d updated=%d unchanged=%d removed=%d\n",
		len(report.Added), len(report.Updated), len(report.Unchanged), len(report.Removed))

	if *publish && !*dryRun {
		publisher, err := s3bucket.NewPublisherFromConfig(ctx, cfg.Publish.Region, logger)
		if err != nil {
			return c.fail("%v", err)
		}
		err = mqpasswd.Retry(ctx, cfg.Retry, logger, func(ctx context.Context) error {
			return publisher.Publish(ctx, cfg.Publish.Bucket, cfg.Publish.Key, rendered.Bytes())
		})
		if err != nil {
			return c.fail("Publish failed: %v", err)
		}
	}

	return exitOK
}

func (c *cli) initCommand(args []string) int {
	fs := c.flagSet("init")
	configPath := fs.String("config", mqpasswd.DefaultConfigPath, "Path of the configuration file to create")
	force := fs.Bool("force", false, "Overwrite existing configuration file")
	if code, ok := c.parse(fs, args); !ok {
		return code
	}

	if !*force {
		if _, err := os.Stat(*configPath); err == nil {
			return c.fail("Configuration file %s already exists. Use -force to overwrite.", *configPath)
		}
	}

	if err := mqpasswd.SaveConfig(mqpasswd.DefaultConfig(), *configPath); err != nil {
		return c.fail("Failed to create config file: %v", err)
	}

	fmt.Fprintf(c.stdout, "Configuration file created at %s\n", *configPath)
	return exitOK
}

func (c *cli) versionCommand() int {
	fmt.Fprintln(c.stdout, mqpasswd.VersionInfo())
	fmt.Fprintln(c.stdout, "Mosquitto password file tool")
	fmt.Fprintf(c.stdout, "Digest: $7$ PBKDF2-SHA512, %d iterations, %d-byte salt\n",
		mqpasswd.DefaultIterations, mqpasswd.DefaultSaltLength)
	return exitOK
}
