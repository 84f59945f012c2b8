package browser

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	apperrors "github.com/hpungsan/plusblocks/internal/errors"
)

// LoginURL is the member sign-in page.
const LoginURL = "https://tailwindcss.com/plus/login"

// DefaultLoginTimeout bounds the interactive sign-in.
const DefaultLoginTimeout = 5 * time.Minute

// IsMemberURL reports whether url is past the sign-in page.
func IsMemberURL(url string) bool {
	return strings.Contains(url, "/plus/ui-blocks") ||
		strings.Contains(url, "/plus/templates") ||
		strings.Contains(url, "/plus/ui-kit") ||
		(strings.Contains(url, "/plus") && !strings.Contains(url, "/login"))
}

// InteractiveLogin opens a visible browser on the sign-in page, waits for the
// user to reach the member area, and saves the session cookies to store.
// Instructions are written to out. The login browser is always closed.
func InteractiveLogin(ctx context.Context, resolver *Resolver, store *SessionStore, timeout time.Duration, out io.Writer) error {
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}
	bin, err := resolver.Resolve(ctx)
	if err != nil {
		return err
	}

	l := launcher.New().
		Bin(bin).
		Headless(false).
		Set("no-sandbox").
		Set("disable-setuid-sandbox")
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch login browser: %w", err)
	}
	defer l.Kill()

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("connect login browser: %w", err)
	}
	defer func() { _ = b.Close() }()

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: RandomUserAgent()}); err != nil {
		return fmt.Errorf("set user agent: %w", err)
	}
	if err := page.Context(ctx).Navigate(LoginURL); err != nil {
		return fmt.Errorf("open %s: %w", LoginURL, err)
	}

	fmt.Fprintln(out, "Log in to Tailwind Plus in the browser window.")
	fmt.Fprintln(out, "The window closes automatically once you reach the member area.")

	if err := waitForMemberURL(ctx, timeout, time.Second, func() (string, error) {
		info, err := page.Info()
		if err != nil {
			return "", err
		}
		return info.URL, nil
	}); err != nil {
		return err
	}

	cookies, err := page.Cookies(nil)
	if err != nil {
		return fmt.Errorf("read cookies: %w", err)
	}
	if err := store.Save(FromNetworkCookies(cookies)); err != nil {
		return err
	}
	fmt.Fprintf(out, "Session saved to %s\n", store.Path())
	return nil
}

// waitForMemberURL polls currentURL every interval until it is a member URL.
// Read errors are tolerated since the page navigates underneath the poll.
func waitForMemberURL(ctx context.Context, timeout, interval time.Duration, currentURL func() (string, error)) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		if u, err := currentURL(); err == nil && IsMemberURL(u) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return apperrors.NewAuthTimeout()
		case <-tick.C:
		}
	}
}
