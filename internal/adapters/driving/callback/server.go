// Package callback provides the local TLS server that captures the
// provider's browser redirect during authorization.
package callback

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driven"
	"github.com/pulsebridge/pulsebridge-cli/internal/logger"
)

// The provider only redirects to HTTPS URIs, so the server terminates
// TLS locally with an operator-supplied (usually self-signed)
// certificate. The listen address and the redirect host differ on
// purpose: the app registration names "localhost" while the socket
// binds the loopback address.
const (
	defaultListenAddr = "127.0.0.1:5000"
	defaultPublicHost = "localhost:5000"
)

// Ensure Server implements the interface.
var _ driven.CallbackListener = (*Server)(nil)

// Server is the authorization callback listener. Its two signals are
// one-shot: reloading the root page or delivering a second code never
// re-fires a signal, though a later code does replace the stored one so
// waiters observe the most recent value.
type Server struct {
	listenAddr string
	publicHost string
	certFile   string
	keyFile    string

	certOnce     sync.Once
	certAccepted chan struct{}
	codeOnce     sync.Once
	codeReceived chan struct{}

	mu   sync.Mutex
	code string

	server   *http.Server
	listener net.Listener
	errChan  chan error
}

// NewServer creates a callback server using the given TLS certificate
// and key files.
func NewServer(certFile, keyFile string) *Server {
	return &Server{
		listenAddr:   defaultListenAddr,
		publicHost:   defaultPublicHost,
		certFile:     certFile,
		keyFile:      keyFile,
		certAccepted: make(chan struct{}),
		codeReceived: make(chan struct{}),
		errChan:      make(chan error, 1),
	}
}

// Start begins serving TLS on the loopback address. Non-blocking.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listenAddr, err)
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.ServeTLS(listener, s.certFile, s.keyFile); err != nil && err != http.ErrServerClosed {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	logger.Debug("callback server listening on %s", s.listenAddr)
	return nil
}

// routes builds the request mux: the root page doubles as the
// certificate-acceptance signal, /callback captures the code, anything
// else is 404.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/callback", s.handleCallback)
	return mux
}

// handleRoot signals certificate acceptance: the page can only load
// after the browser has trusted the certificate.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	// The root pattern matches every unregistered path.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.certOnce.Do(func() { close(s.certAccepted) })

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, pageHTML("Certificate accepted",
		"Return to the application to continue authorization."))
}

// handleCallback captures the provider redirect. A redirect without a
// code is a provider error surfaced to the browser; a second code
// replaces the first without re-signalling.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, pageHTML("Authorization failed",
			"The redirect did not include an authorization code."))
		return
	}

	s.mu.Lock()
	s.code = code
	s.mu.Unlock()
	s.codeOnce.Do(func() { close(s.codeReceived) })

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, pageHTML("Authorization successful",
		"You can close this window and return to the application."))
}

// WaitForCertAccept blocks until the root page has been loaded or ctx
// is cancelled. No timeout: this step waits on a human.
func (s *Server) WaitForCertAccept(ctx context.Context) error {
	select {
	case <-s.certAccepted:
		return nil
	case err := <-s.errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitForCode blocks until an authorization code arrives or the timeout
// elapses. The returned code is the most recent one delivered.
func (s *Server) WaitForCode(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.codeReceived:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.code, nil
	case err := <-s.errChan:
		return "", err
	case <-timer.C:
		return "", domain.ErrAuthTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// RedirectURI returns the HTTPS redirect URI registered with the
// provider.
func (s *Server) RedirectURI() string {
	return fmt.Sprintf("https://%s/callback", s.publicHost)
}

// RootURL returns the HTTPS root URL the operator visits to accept the
// certificate.
func (s *Server) RootURL() string {
	return fmt.Sprintf("https://%s/", s.publicHost)
}

// Stop shuts down the server. Safe to call more than once.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func pageHTML(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>PulseBridge</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: #FAFAFA;
        }
        .container {
            text-align: center;
            background: white;
            padding: 48px 64px;
            border-radius: 16px;
            border: 1px solid #C7C8CC;
            box-shadow: 0 4px 24px rgba(0,0,0,0.08);
        }
        h1 {
            color: #333F50;
            margin: 0 0 8px 0;
            font-size: 24px;
            font-weight: 600;
        }
        p {
            color: #7B8088;
            margin: 0;
            font-size: 16px;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>`, title, message)
}
