// Package cli implements ragctl, a terminal client for the RAG backend that
// shares the console's backend client and view services.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"rag-console/internal/apiclient"
	"rag-console/internal/logger"
	"rag-console/internal/model"
	"rag-console/internal/session"
)

const (
	defaultAPIURL  = "http://localhost:8000/api/v1"
	defaultTimeout = 60 * time.Second

	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// reloginMessage is printed whenever the backend rejects the stored token.
const reloginMessage = "Your session has expired or was revoked. Run `ragctl login` to sign in again."

var errUsage = errors.New("usage")

type command struct {
	usage   string
	summary string
	// anonymous commands run without a stored token
	anonymous bool
	run       func(ctx context.Context, c *CLI, args []string) error
}

var commands = map[string]command{
	"login":    {usage: "login [-u username]", summary: "sign in and store the token", anonymous: true, run: runLogin},
	"logout":   {usage: "logout", summary: "forget the stored token", anonymous: true, run: runLogout},
	"whoami":   {usage: "whoami", summary: "show the signed-in user", run: runWhoami},
	"docs":     {usage: "docs [-selectable]", summary: "list documents", run: runDocs},
	"upload":   {usage: "upload [-policy] <file>", summary: "upload a document", run: runUpload},
	"rm-doc":   {usage: "rm-doc <id>", summary: "delete a document", run: runRemoveDocument},
	"users":    {usage: "users", summary: "list users", run: runUsers},
	"settings": {usage: "settings [key=value ...]", summary: "show or change RAG settings", run: runSettings},
	"chat":     {usage: "chat [-doc id | -policy] <query>", summary: "ask a question", run: runChat},
}

// CLI holds one invocation's streams and backend client.
type CLI struct {
	out    io.Writer
	errOut io.Writer
	in     *bufio.Reader

	api               *apiclient.Client
	tokens            session.TokenStore
	allowedExtensions []string
	now               func() time.Time
}

// Run executes ragctl with args (without the program name) and returns the
// process exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer, getenv func(string) string) int {
	if getenv == nil {
		getenv = os.Getenv
	}

	fs := flag.NewFlagSet("ragctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	apiURL := fs.String("api", envOr(getenv, "RAGCTL_API_URL", defaultAPIURL), "backend base URL")
	tokenFile := fs.String("token-file", getenv("RAGCTL_TOKEN_FILE"), "token file (default ~/.ragctl/token)")
	timeout := fs.Duration("timeout", defaultTimeout, "backend request timeout")
	verbose := fs.Bool("v", false, "log debug output to stderr")
	fs.Usage = func() { printUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(logger.NewPrettyHandler(stderr, &logger.Options{Level: level})))

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return exitUsage
	}

	name := rest[0]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		printUsage(stderr)
		return exitUsage
	}

	path := *tokenFile
	if strings.TrimSpace(path) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(stderr, "cannot locate home directory: %v\n", err)
			return exitError
		}
		path = filepath.Join(home, ".ragctl", "token")
	}

	tokens, err := session.NewFileTokenStore(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	c := &CLI{
		out:               stdout,
		errOut:            stderr,
		in:                bufio.NewReader(stdin),
		tokens:            tokens,
		allowedExtensions: []string{".pdf", ".docx", ".doc", ".txt"},
		now:               time.Now,
	}
	base := strings.TrimRight(strings.TrimSpace(*apiURL), "/")
	c.api = apiclient.New(base, &http.Client{Timeout: *timeout}, nil).WithTokens(tokens)

	if !cmd.anonymous && !session.Valid(ctx, tokens, c.now()) {
		_ = tokens.RemoveToken(ctx)
		fmt.Fprintln(stderr, "Not logged in. Run `ragctl login` first.")
		return exitError
	}

	if err := cmd.run(ctx, c, rest[1:]); err != nil {
		return c.report(name, cmd, err)
	}

	return exitOK
}

func (c *CLI) report(name string, cmd command, err error) int {
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintf(c.errOut, "usage: ragctl %s\n", cmd.usage)
		return exitUsage
	case errors.Is(err, model.ErrUnauthorized):
		fmt.Fprintln(c.errOut, reloginMessage)
		return exitError
	default:
		fmt.Fprintf(c.errOut, "%s: %s\n", name, errorText(err))
		return exitError
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: ragctl [-api url] [-token-file path] [-timeout d] [-v] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "  %-34s %s\n", commands[name].usage, commands[name].summary)
	}
}

func envOr(getenv func(string) string, key string, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}
