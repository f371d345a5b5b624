package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestService(lookup func(ctx context.Context, host string) ([]string, error)) *AutomationService {
	s := NewAutomationService("test-secret")
	if lookup != nil {
		s.lookup = lookup
	}
	return s
}

func TestTriggerNoEndpoint(t *testing.T) {
	s := newTestService(nil)
	if err := s.Trigger(context.Background(), ""); !errors.Is(err, ErrNoEndpoint) {
		t.Fatalf("err = %v, want ErrNoEndpoint", err)
	}
}

func TestValidateEndpointDenylist(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
	}{
		{"plain http", "http://automation.example.com/run"},
		{"loopback ip", "https://127.0.0.1/run"},
		{"unspecified", "https://0.0.0.0/run"},
		{"rfc1918 ten", "https://10.1.2.3/run"},
		{"rfc1918 oneseventytwo", "https://172.20.0.5/run"},
		{"rfc1918 oneninetytwo", "https://192.168.1.1/run"},
		{"link local", "https://169.254.169.254/latest/meta-data"},
		{"carrier nat", "https://100.64.0.1/run"},
		{"ipv6 loopback", "https://[::1]/run"},
		{"no host", "https:///run"},
		{"not a url", "https://%%%"},
	}

	s := newTestService(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Trigger(context.Background(), tt.endpoint)
			if !errors.Is(err, ErrURLNotAllowed) {
				t.Fatalf("Trigger(%q) = %v, want ErrURLNotAllowed", tt.endpoint, err)
			}
		})
	}
}

func TestValidateEndpointResolvesHostnames(t *testing.T) {
	// A public-looking hostname that resolves into a private range is
	// refused; DNS does not bypass the denylist.
	s := newTestService(func(ctx context.Context, host string) ([]string, error) {
		return []string{"192.168.0.10"}, nil
	})
	err := s.Trigger(context.Background(), "https://automation.example.com/run")
	if !errors.Is(err, ErrURLNotAllowed) {
		t.Fatalf("err = %v, want ErrURLNotAllowed", err)
	}

	// Resolution failure is also a refusal, not a pass-through.
	s = newTestService(func(ctx context.Context, host string) ([]string, error) {
		return nil, errors.New("no such host")
	})
	err = s.Trigger(context.Background(), "https://automation.example.com/run")
	if !errors.Is(err, ErrURLNotAllowed) {
		t.Fatalf("err = %v, want ErrURLNotAllowed", err)
	}
}

func TestTriggerSendsSecretAndClassifiesUpstream(t *testing.T) {
	var gotSecret string
	var status int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Automation-Secret")
		w.WriteHeader(status)
	}))
	defer upstream.Close()

	// The test server is loopback; swap in a pass-through validator so the
	// transport path itself can be exercised.
	s := newTestService(nil)
	s.validate = func(ctx context.Context, endpoint string) error { return nil }

	status = http.StatusNoContent
	if err := s.Trigger(context.Background(), upstream.URL); err != nil {
		t.Fatalf("2xx trigger failed: %v", err)
	}
	if gotSecret != "test-secret" {
		t.Fatalf("secret header = %q", gotSecret)
	}

	status = http.StatusForbidden
	err := s.Trigger(context.Background(), upstream.URL)
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if ue.Status != http.StatusForbidden {
		t.Fatalf("upstream status = %d, want 403", ue.Status)
	}
}

func TestTriggerTimeoutSurfaced(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer upstream.Close()

	s := newTestService(nil)
	s.validate = func(ctx context.Context, endpoint string) error { return nil }

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Trigger(ctx, upstream.URL); err == nil {
		t.Fatal("expected a transport error on timeout")
	}
}
