package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrymomot/qrgen/core/artifact"
)

// WiFiContent builds the WIFI: payload understood by phone camera apps.
// Special characters in the ssid and password are escaped per the de facto
// format rules.
func WiFiContent(ssid, password, security string, hidden bool) string {
	if security == "" {
		security = "WPA"
	}
	return fmt.Sprintf("WIFI:T:%s;S:%s;P:%s;H:%t;;",
		security, escapeWiFi(ssid), escapeWiFi(password), hidden)
}

func escapeWiFi(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `;`, `\;`, `,`, `\,`, `:`, `\:`, `"`, `\"`)
	return r.Replace(s)
}

// VCardContent builds a minimal vCard 3.0 payload.
func VCardContent(name, phone, email, org string) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCARD\nVERSION:3.0\n")
	fmt.Fprintf(&b, "FN:%s\n", name)
	if phone != "" {
		fmt.Fprintf(&b, "TEL:%s\n", phone)
	}
	if email != "" {
		fmt.Fprintf(&b, "EMAIL:%s\n", email)
	}
	if org != "" {
		fmt.Fprintf(&b, "ORG:%s\n", org)
	}
	b.WriteString("END:VCARD")
	return b.String()
}

// NormalizeURL prepends https:// when the value carries no scheme.
func NormalizeURL(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return "https://" + url
}

// GenerateWiFi generates a QR code holding WiFi credentials.
func (s *Service) GenerateWiFi(ctx context.Context, ssid, password, security string, hidden bool, p Params) (*artifact.Artifact, error) {
	p.Data = WiFiContent(ssid, password, security, hidden)
	return s.Generate(ctx, p)
}

// GenerateVCard generates a QR code holding a contact card.
func (s *Service) GenerateVCard(ctx context.Context, name, phone, email, org string, p Params) (*artifact.Artifact, error) {
	p.Data = VCardContent(name, phone, email, org)
	return s.Generate(ctx, p)
}

// GenerateURL generates a QR code for a URL, defaulting the scheme to
// https when absent.
func (s *Service) GenerateURL(ctx context.Context, url string, p Params) (*artifact.Artifact, error) {
	p.Data = NormalizeURL(url)
	return s.Generate(ctx, p)
}
