// Package bootstrap implements C2: SSL configuration and authentication
// bootstrap, run once per process (or per credential refresh) before any
// LLM or database connector is constructed.
//
// SetupSSL is a direct port of the original source's setup_ssl: it resolves
// SSL_VERIFY/SSL_CERT_PATH into a TLS client config, failing fast if a
// configured certificate file is missing.
package bootstrap

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"strings"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/obslog"
	"aegis/pkg/core/settings"
)

// SSLResult mirrors the {"verify": bool, "cert_path": str|None} schema the
// original source returns, plus the *tls.Config ready to hand to an HTTP
// transport.
type SSLResult struct {
	Verify   bool
	CertPath string
	TLS      *tls.Config
}

// SetupSSL resolves TLS trust configuration from Settings.
func SetupSSL(s *settings.Settings) (*SSLResult, error) {
	if !s.SSLVerify {
		obslog.Debug("ssl.verification_disabled")
		return &SSLResult{Verify: false, TLS: &tls.Config{InsecureSkipVerify: true}}, nil
	}

	certPath := s.SSLCertPath
	if certPath == "" {
		obslog.Info("ssl.verification_enabled_system_certs")
		return &SSLResult{Verify: true, TLS: &tls.Config{}}, nil
	}

	certPath = expandUser(certPath)
	if _, err := os.Stat(certPath); err != nil {
		obslog.Error("ssl.cert_not_found", "cert_path", certPath)
		return nil, apperr.Config("bootstrap.setup_ssl", "SSL certificate file not found: "+certPath, err)
	}

	pem, err := os.ReadFile(certPath)
	if err != nil {
		return nil, apperr.Config("bootstrap.setup_ssl", "failed to read SSL certificate: "+certPath, err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if ok := pool.AppendCertsFromPEM(pem); !ok {
		return nil, apperr.Config("bootstrap.setup_ssl", "SSL certificate file is not valid PEM: "+certPath, nil)
	}

	obslog.Info("ssl.verification_enabled_with_certificate", "cert_path", certPath)
	return &SSLResult{Verify: true, CertPath: certPath, TLS: &tls.Config{RootCAs: pool}}, nil
}

func expandUser(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
