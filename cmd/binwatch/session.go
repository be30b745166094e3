package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/target/binwatch/internal/bootstrap"
	domainsession "github.com/target/binwatch/internal/domain/session"
	apperrors "github.com/target/binwatch/internal/errors"
	"github.com/target/binwatch/internal/redirect"
)

// printNavigator renders screen changes as lines on the terminal.
type printNavigator struct {
	mu  sync.Mutex
	out io.Writer
}

func (n *printNavigator) Navigate(_ context.Context, route domainsession.Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_ = writef(n.out, "screen: %s\n", route)
}

type runOptions struct {
	LaunchURL string
}

func parseRunFlags(args []string) (runOptions, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts runOptions
	fs.StringVar(&opts.LaunchURL, "launch-url", "", "Deep link the app was launched with")
	if err := fs.Parse(args); err != nil {
		return runOptions{}, err
	}
	opts.LaunchURL = strings.TrimSpace(opts.LaunchURL)
	return opts, nil
}

func newApp(cc *commandContext, out io.Writer) (*bootstrap.App, error) {
	return bootstrap.NewApp(cc.Ctx, bootstrap.AppDeps{
		Config:    &cc.Config,
		Navigator: &printNavigator{out: out},
		Out:       out,
		Logger:    cc.Logger,
	})
}

func closeApp(cc *commandContext, app *bootstrap.App) {
	if err := app.Close(); err != nil {
		cc.Logger.ErrorContext(cc.Ctx, "close app failed", "error", err)
	}
}

func runInteractive(cc *commandContext, args []string) error {
	opts, err := parseRunFlags(args)
	if err != nil {
		return err
	}

	app, err := newApp(cc, cc.Stdout)
	if err != nil {
		return err
	}
	defer closeApp(cc, app)

	if opts.LaunchURL != "" {
		app.Hub.SetLaunchURL(opts.LaunchURL)
	} else {
		app.Hub.SetNoLaunchURL()
	}

	ctx, cancel := context.WithCancel(cc.Ctx)
	runDone := make(chan error, 1)
	go func() { runDone <- app.Resolver.Run(ctx, app.Hub) }()
	defer func() {
		cancel()
		if err := <-runDone; err != nil {
			cc.Logger.ErrorContext(cc.Ctx, "resolver stopped", "error", err)
		}
	}()

	select {
	case <-app.Resolver.Started():
	case <-ctx.Done():
		return nil
	}

	lines := readLines(ctx, cc.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := handleLine(ctx, app, cc.Stdout, line); err != nil {
				cc.Logger.WarnContext(ctx, "command failed", "input", line, "error", err)
			}
		}
	}
}

// readLines streams lines from r until EOF or until ctx is done. The channel is closed
// when the reader goroutine exits.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if ctx.Err() != nil {
				return
			}
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// handleLine interprets one line of interactive input. "login", "logout" and
// "whoami" are actions; anything else is delivered as a deep link.
func handleLine(ctx context.Context, app *bootstrap.App, out io.Writer, line string) error {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return nil
	case "login":
		return app.Auth.BeginLogin(ctx)
	case "logout":
		return app.Auth.Logout(ctx)
	case "whoami":
		sess, ok := app.Resolver.Session()
		if !ok {
			return writeln(out, "not signed in")
		}
		return writef(out, "signed in as %s\n", app.Auth.DisplayName(sess))
	default:
		app.Hub.Publish(ctx, line)
		return nil
	}
}

func runStatus(cc *commandContext, _ []string) error {
	app, err := newApp(cc, io.Discard)
	if err != nil {
		return err
	}
	defer closeApp(cc, app)

	sess, err := app.Store.Load(cc.Ctx)
	if apperrors.IsNotFound(err) {
		return writeln(cc.Stdout, "not signed in")
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	return writef(cc.Stdout, "signed in as %s\n", app.Auth.DisplayName(sess))
}

func runLogin(cc *commandContext, _ []string) error {
	app, err := newApp(cc, cc.Stdout)
	if err != nil {
		return err
	}
	defer closeApp(cc, app)

	app.Hub.SetNoLaunchURL()
	release := app.Resolver.Attach(cc.Ctx, app.Hub)
	defer release()

	if app.Resolver.State() == domainsession.StateAuthenticated {
		sess, _ := app.Resolver.Session()
		return writef(cc.Stdout, "already signed in as %s\n", app.Auth.DisplayName(sess))
	}

	if err := app.Auth.BeginLogin(cc.Ctx); err != nil {
		return err
	}
	if app.Resolver.State() != domainsession.StateAuthenticated {
		return writeln(cc.Stdout, "complete the login in your browser, then pass the redirect to `binwatch run`")
	}
	sess, _ := app.Resolver.Session()
	return writef(cc.Stdout, "signed in as %s\n", app.Auth.DisplayName(sess))
}

func runLogout(cc *commandContext, _ []string) error {
	app, err := newApp(cc, io.Discard)
	if err != nil {
		return err
	}
	defer closeApp(cc, app)

	app.Hub.SetNoLaunchURL()
	release := app.Resolver.Attach(cc.Ctx, app.Hub)
	defer release()

	if err := app.Auth.Logout(cc.Ctx); err != nil {
		return err
	}
	return writeln(cc.Stdout, "signed out")
}

type linkOptions struct {
	DisplayName string
	Extra       []string
}

type extraFlag struct {
	values *[]string
}

func (f extraFlag) String() string {
	if f.values == nil {
		return ""
	}
	return strings.Join(*f.values, ",")
}

func (f extraFlag) Set(v string) error {
	*f.values = append(*f.values, v)
	return nil
}

func parseLinkFlags(args []string) (linkOptions, error) {
	fs := flag.NewFlagSet("link", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts linkOptions
	fs.StringVar(&opts.DisplayName, "name", "", "Display name to embed (required)")
	fs.Var(extraFlag{values: &opts.Extra}, "extra", "Additional key=value field (repeatable)")
	if err := fs.Parse(args); err != nil {
		return linkOptions{}, err
	}
	opts.DisplayName = strings.TrimSpace(opts.DisplayName)
	if opts.DisplayName == "" {
		return linkOptions{}, errors.New("--name is required")
	}
	return opts, nil
}

func buildLink(prefix string, opts linkOptions) (string, error) {
	sess := domainsession.Session{DisplayName: opts.DisplayName}
	for _, kv := range opts.Extra {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return "", fmt.Errorf("invalid --extra %q: want key=value", kv)
		}
		if sess.Extra == nil {
			sess.Extra = map[string]any{}
		}
		sess.Extra[key] = value
	}
	return redirect.Encode(prefix, sess)
}

func runLink(cc *commandContext, args []string) error {
	opts, err := parseLinkFlags(args)
	if err != nil {
		return err
	}
	link, err := buildLink(cc.Config.DeepLink.Prefix, opts)
	if err != nil {
		return err
	}
	return writeln(cc.Stdout, link)
}
