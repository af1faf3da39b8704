package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	if len(args) < 1 {
		printUsage(stderr)
		return exitUsage
	}

	cli := &cli{stdin: stdin, stdout: stdout, stderr: stderr}

	command := args[0]
	switch command {
	case "hash":
		return cli.hashCommand(args[1:])
	case "verify":
		return cli.verifyCommand(args[1:])
	case "set":
		return cli.setCommand(args[1:])
	case "delete":
		return cli.deleteCommand(args[1:])
	case "generate":
		return cli.generateCommand(args[1:])
	case "init":
		return cli.initCommand(args[1:])
	case "version":
		return cli.versionCommand()
	case "help", "-h", "-help", "--help":
		printUsage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return exitUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: mqpasswd <command> [options]\n")
	fmt.Fprintf(w, "\nCommands:\n")
	fmt.Fprintf(w, "  hash      Print a Mosquitto PBKDF2-SHA512 digest for a password\n")
	fmt.Fprintf(w, "  verify    Check a user's password against a password file\n")
	fmt.Fprintf(w, "  set       Add or update a user in a password file\n")
	fmt.Fprintf(w, "  delete    Remove a user from a password file\n")
	fmt.Fprintf(w, "  generate  Render a password file from configuration\n")
	fmt.Fprintf(w, "  init      Write a starter configuration file\n")
	fmt.Fprintf(w, "  version   Show version information\n")
	fmt.Fprintf(w, "\nPasswords not given with -password are read from the first line of stdin.\n")
	fmt.Fprintf(w, "Run 'mqpasswd <command> -h' for help on a specific command.\n")
}
