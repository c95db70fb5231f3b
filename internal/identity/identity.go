package identity

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signagekit/tv-player/internal/config"
)

// Identity is the node's network identity, used to select which remote
// content applies to this screen.
type Identity struct {
	Hostname   string
	LocalIP    string
	ExternalIP string
}

// Key returns the identity in a form usable as a status sink key.
// Firebase forbids dots in keys, so they are replaced with underscores.
func (id Identity) Key() string {
	return strings.ReplaceAll(id.ExternalIP, ".", "_")
}

// Resolver determines the node identity from its external IP address.
type Resolver struct {
	cfg    config.IdentityConfig
	client *http.Client
	log    *logrus.Entry
}

// NewResolver creates an identity resolver.
func NewResolver(cfg config.IdentityConfig, log *logrus.Logger) *Resolver {
	return &Resolver{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
		log:    log.WithField("component", "identity"),
	}
}

// Resolve fills in hostname, local IP and external IP. Transient HTTP/DNS
// failures are retried a few times before giving up; the external IP is the
// only mandatory part.
func (r *Resolver) Resolve(ctx context.Context) (Identity, error) {
	id := Identity{}

	if hostname, err := os.Hostname(); err == nil {
		id.Hostname = hostname
	}
	id.LocalIP = localIP()

	if r.cfg.Override != "" {
		id.ExternalIP = r.cfg.Override
		r.log.WithField("identity", id.ExternalIP).Info("Using identity override")
		return id, nil
	}

	const attempts = 3
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
				return id, ctx.Err()
			}
		}

		ip, err := r.fetchExternalIP(ctx)
		if err == nil {
			id.ExternalIP = ip
			r.log.WithFields(logrus.Fields{
				"hostname":    id.Hostname,
				"local_ip":    id.LocalIP,
				"external_ip": id.ExternalIP,
			}).Info("Node identity resolved")
			return id, nil
		}
		lastErr = err
		r.log.WithError(err).Warnf("External IP lookup failed (attempt %d/%d)", attempt+1, attempts)
	}

	return id, fmt.Errorf("failed to determine external IP: %w", lastErr)
}

// fetchExternalIP queries the configured plain-text IP echo endpoint.
func (r *Resolver) fetchExternalIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.IPEndpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ip endpoint returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", err
	}

	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("ip endpoint returned unparseable address %q", ip)
	}
	return ip, nil
}

// localIP reports the preferred outbound interface address. Best effort;
// an empty string is fine, the external IP carries the identity.
func localIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return ""
	}
	defer conn.Close()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return ""
}
