package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	// CallbackAddr is the fixed local address the ephemeral callback
	// server listens on during the interactive authorization flow. It
	// must agree with DefaultRedirectURL.
	CallbackAddr = "localhost:8085"

	callbackPath = "/oauth2callback"

	callbackShutdownTimeout = 5 * time.Second
)

const confirmationPage = `<!DOCTYPE html>
<html>
<body style="font-family:system-ui;text-align:center;margin-top:80px">
<h2>Authorization complete</h2>
<p>This application can now read your Google Docs and Sheets.</p>
<p>You can close this window and return to the terminal.</p>
</body>
</html>`

// AwaitCallback runs the single-use local callback server for one
// interactive authorization. It blocks until the redirect arrives and
// the exchange outcome is known, then shuts the listener down gracefully
// so the confirmation page is delivered before return.
//
// The redirect is handled in exactly one of three ways: an error query
// parameter fails the flow immediately, a code is exchanged through the
// session, and any other path is a 404. Completion is a one-shot signal;
// the server is not reusable.
func AwaitCallback(ctx context.Context, session *Session, state string) error {
	ln, err := net.Listen("tcp", CallbackAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", CallbackAddr, err)
	}
	return awaitCallback(ctx, session, state, ln)
}

func awaitCallback(ctx context.Context, session *Session, state string, ln net.Listener) error {
	done := make(chan error, 1)
	var once sync.Once
	finish := func(err error) {
		once.Do(func() { done <- err })
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if errParam := q.Get("error"); errParam != "" {
			http.Error(w, "Authorization failed: "+errParam, http.StatusBadRequest)
			finish(fmt.Errorf("authorization denied: %s", errParam))
			return
		}

		if state != "" && q.Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			finish(errors.New("callback state mismatch"))
			return
		}

		code := q.Get("code")
		if code == "" {
			http.Error(w, "Missing authorization code", http.StatusBadRequest)
			finish(errors.New("callback missing authorization code"))
			return
		}

		if err := session.Exchange(r.Context(), code); err != nil {
			http.Error(w, "Token exchange failed; check the terminal for details.", http.StatusInternalServerError)
			finish(err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, confirmationPage)
		finish(nil)
	})

	srv := &http.Server{Handler: mux}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case err := <-done:
		// Shutdown waits for the in-flight response, so the browser
		// receives the page before the listener goes away.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), callbackShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return err
	case err := <-serveErr:
		return fmt.Errorf("callback server: %w", err)
	case <-ctx.Done():
		_ = srv.Close()
		return ctx.Err()
	}
}
