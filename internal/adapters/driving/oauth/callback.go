// Package oauth runs the browser side of an OAuth2 authorization code
// login: a loopback callback server, PKCE, and the code exchange.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// CallbackPath is where the provider redirects the browser.
const CallbackPath = "/callback"

var (
	errStateMismatch = errors.New("state mismatch in authorization callback")
	errNoCode        = errors.New("no authorization code received")
)

type outcome struct {
	code string
	err  error
}

// Receiver is a loopback HTTP server that accepts exactly one
// authorization redirect. Later redirects get the result page but do not
// change the outcome.
type Receiver struct {
	state  string
	ln     net.Listener
	srv    *http.Server
	result chan outcome
	once   sync.Once
}

// Listen binds 127.0.0.1:port (0 picks a free port) and starts serving
// redirects that must carry state.
func Listen(ctx context.Context, port int, state string) (*Receiver, error) {
	var lc net.ListenConfig
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for oauth callback on %s: %w", addr, err)
	}

	r := &Receiver{
		state:  state,
		ln:     ln,
		result: make(chan outcome, 1),
	}
	mux := http.NewServeMux()
	mux.Handle("GET "+CallbackPath, r)
	r.srv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := r.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.settle(outcome{err: err})
		}
	}()
	return r, nil
}

func (r *Receiver) settle(o outcome) {
	r.once.Do(func() { r.result <- o })
}

func (r *Receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	var o outcome
	switch {
	case q.Get("error") != "":
		o.err = fmt.Errorf("oauth error: %s: %s", q.Get("error"), q.Get("error_description"))
	case q.Get("state") != r.state:
		o.err = errStateMismatch
	case q.Get("code") == "":
		o.err = errNoCode
	default:
		o.code = q.Get("code")
	}
	r.settle(o)

	page := resultPage{Title: "Authorization successful", Message: "You can close this window and return to the terminal."}
	if o.err != nil {
		page = resultPage{Title: "Authorization failed", Message: o.err.Error()}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = resultTmpl.Execute(w, page)
}

// Wait returns the code from the first redirect, or its error. It gives
// up when ctx ends.
func (r *Receiver) Wait(ctx context.Context) (string, error) {
	select {
	case o := <-r.result:
		return o.code, o.err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for authorization callback: %w", ctx.Err())
	}
}

// Close stops the server, allowing a moment for the result page to flush.
func (r *Receiver) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return r.srv.Shutdown(ctx)
}

func (r *Receiver) Port() int {
	return r.ln.Addr().(*net.TCPAddr).Port
}

// RedirectURI is the URL to register with the provider for this login.
func (r *Receiver) RedirectURI() string {
	return "http://localhost:" + strconv.Itoa(r.Port()) + CallbackPath
}

type resultPage struct {
	Title   string
	Message string
}

var resultTmpl = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html>
<head><title>ragapp</title>
<style>body{font-family:sans-serif;text-align:center;margin-top:20vh}</style>
</head>
<body><h1>{{.Title}}</h1><p>{{.Message}}</p></body>
</html>`))
