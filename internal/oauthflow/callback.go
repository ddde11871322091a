package oauthflow

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Adolar0042/warden/internal/wardenerr"
)

// callbackServer is the locally bound loopback HTTP server that receives
// the authorization redirect, grounded on
// custodia-labs-sercha-cli/internal/adapters/driving/oauth/callback.go's
// CallbackServer, generalized to the provider-agnostic result shape
// spec.md §4.4 requires (code/state/error all surfaced to the caller
// instead of being resolved against a hardcoded GitHub client).
type callbackServer struct {
	mu           sync.Mutex
	listener     net.Listener
	server       *http.Server
	expectedState string
	resultCh     chan callbackResult
	accepted     bool
}

type callbackResult struct {
	code  string
	state string
	err   error // set when the provider redirected with an error param
}

// newCallbackServer binds a loopback TCP listener on 127.0.0.1:port (or an
// OS-chosen ephemeral port if port is 0), per spec.md §4.4 step 1 and
// §5's "bind before constructing the authorization URL" rule.
func newCallbackServer(port int, expectedState string) (*callbackServer, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, wardenerr.Wrap(wardenerr.BindFailed, "bind loopback callback listener", err)
	}
	cs := &callbackServer{
		listener:      ln,
		expectedState: expectedState,
		resultCh:      make(chan callbackResult, 1),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", cs.handle)
	cs.server = &http.Server{Handler: mux}
	return cs, nil
}

// Port returns the bound TCP port.
func (cs *callbackServer) Port() int {
	return cs.listener.Addr().(*net.TCPAddr).Port
}

// RedirectURI returns the redirect_uri to use in the authorization URL.
func (cs *callbackServer) RedirectURI() string {
	return fmt.Sprintf("http://127.0.0.1:%d/", cs.Port())
}

// Serve starts accepting connections in the background. It MUST reject
// all but the first accepted connection, per spec.md §5's anti-replay
// requirement.
func (cs *callbackServer) Serve() {
	go cs.server.Serve(cs.listener)
}

func (cs *callbackServer) handle(w http.ResponseWriter, r *http.Request) {
	cs.mu.Lock()
	if cs.accepted {
		cs.mu.Unlock()
		http.Error(w, "callback already received", http.StatusGone)
		return
	}
	cs.accepted = true
	cs.mu.Unlock()

	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		desc := q.Get("error_description")
		cs.resultCh <- callbackResult{err: fmt.Errorf("%s: %s", errParam, desc)}
		writeCallbackPage(w, false)
		return
	}

	code := q.Get("code")
	state := q.Get("state")
	cs.resultCh <- callbackResult{code: code, state: state}
	writeCallbackPage(w, true)
}

// WaitForCode blocks until the callback fires or ctx is done.
func (cs *callbackServer) WaitForCode(ctx context.Context) (callbackResult, error) {
	select {
	case res := <-cs.resultCh:
		return res, nil
	case <-ctx.Done():
		return callbackResult{}, wardenerr.Wrap(wardenerr.FlowTimeout, "timed out waiting for OAuth callback", ctx.Err())
	}
}

// Close shuts down the server and releases the socket. Safe to call
// multiple times and on every exit path, per spec.md §5.
func (cs *callbackServer) Close() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = cs.server.Shutdown(shutdownCtx)
	cs.listener.Close()
}

func writeCallbackPage(w http.ResponseWriter, ok bool) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	title, message := "Authorization complete", "You can close this window and return to the terminal."
	if !ok {
		title, message = "Authorization failed", "You can close this window and return to the terminal."
	}
	fmt.Fprintf(w, `<!doctype html><html><head><title>%s</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4em;">
<h1>%s</h1><p>%s</p></body></html>`, title, title, message)
}
