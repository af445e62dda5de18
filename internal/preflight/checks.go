package preflight

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const dialTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckAPIURL verifies a configured URL is absolute http(s). An empty value
// passes because the endpoint can be supplied per request.
func CheckAPIURL(name, raw string) Result {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{Name: name, Passed: true, Detail: "not configured (pass --api-url per request)"}
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: must start with http:// or https://)", raw)}
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", raw, err)}
	}
	if parsed.Host == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: missing host)", raw)}
	}
	return Result{Name: name, Passed: true, Detail: raw}
}

// CheckReachable opens a TCP connection to the URL's host. The generation
// endpoint only accepts POST, so a dial is the cheapest probe that does not
// start a job.
func CheckReachable(ctx context.Context, name, raw string) Result {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: invalid url)", raw)}
	}
	host := parsed.Host
	if parsed.Port() == "" {
		port := "80"
		if parsed.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(parsed.Hostname(), port)
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "tcp", host)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", host, err)}
	}
	_ = conn.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", host)}
}
