package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Automation trigger failures callers must tell apart: a missing endpoint, a
// denylisted URL and an upstream rejection each get their own user-facing
// message.
var (
	ErrNoEndpoint    = errors.New("no automation endpoint configured")
	ErrURLNotAllowed = errors.New("automation endpoint URL not allowed")
)

// UpstreamError reports a non-2xx response from the automation endpoint.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("automation endpoint returned status %d", e.Status)
}

// privateBlocks are the IPv4 ranges the trigger refuses to call: loopback,
// RFC1918, link-local, CGN and the unspecified address.
var privateBlocks = []string{
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.168.0.0/16",
}

// AutomationService performs the single outbound side-effect call: asking an
// external automation endpoint to run. The shared secret lives in server
// config and is never returned to clients.
type AutomationService struct {
	client   *http.Client
	secret   string
	lookup   func(ctx context.Context, host string) ([]string, error)
	validate func(ctx context.Context, endpoint string) error
}

func NewAutomationService(secret string) *AutomationService {
	s := &AutomationService{
		client: &http.Client{Timeout: 15 * time.Second},
		secret: secret,
		lookup: func(ctx context.Context, host string) ([]string, error) {
			return net.DefaultResolver.LookupHost(ctx, host)
		},
	}
	s.validate = s.validateEndpoint
	return s
}

// Trigger validates the endpoint and POSTs to it with the shared secret
// attached. Returns ErrNoEndpoint, ErrURLNotAllowed or *UpstreamError on the
// distinct failure classes.
func (s *AutomationService) Trigger(ctx context.Context, endpoint string) error {
	if endpoint == "" {
		return ErrNoEndpoint
	}
	if err := s.validate(ctx, endpoint); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build automation request: %w", err)
	}
	req.Header.Set("X-Automation-Secret", s.secret)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("call automation endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Status: resp.StatusCode}
	}
	return nil
}

// validateEndpoint enforces encrypted transport and refuses URLs whose host
// resolves into a private or loopback IPv4 range.
func (s *AutomationService) validateEndpoint(ctx context.Context, endpoint string) error {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return ErrURLNotAllowed
	}
	if parsed.Scheme != "https" {
		return ErrURLNotAllowed
	}
	host := parsed.Hostname()
	if host == "" {
		return ErrURLNotAllowed
	}

	addrs := []string{host}
	if net.ParseIP(host) == nil {
		resolved, err := s.lookup(ctx, host)
		if err != nil || len(resolved) == 0 {
			return ErrURLNotAllowed
		}
		addrs = resolved
	}

	for _, addr := range addrs {
		ip := net.ParseIP(addr)
		if ip == nil {
			return ErrURLNotAllowed
		}
		if ipDenied(ip) {
			return ErrURLNotAllowed
		}
	}
	return nil
}

func ipDenied(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsUnspecified() {
		return true
	}
	v4 := ip.To4()
	if v4 == nil {
		// IPv6: only unique-local and link-local are refused here.
		return ip.IsLinkLocalUnicast() || ip.IsPrivate()
	}
	for _, block := range privateBlocks {
		_, cidr, err := net.ParseCIDR(block)
		if err != nil {
			continue
		}
		if cidr.Contains(v4) {
			return true
		}
	}
	return false
}
