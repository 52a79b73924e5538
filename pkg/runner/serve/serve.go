// Package serve runs the in-memory backlog server with its push channel.
package serve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/backlog/pkg/fakeapi"
)

type Serve struct {
	Addr   string
	Prefix string
	// Area names the demo backlog; ignored with a fixture.
	Area    string
	Fixture string
	Logger  *slog.Logger
	Out     io.Writer
	// Ready receives the bound address once the listener is open.
	Ready func(addr string)
}

// Do serves until ctx is done.
func (n *Serve) Do(ctx context.Context) error {
	var b *fakeapi.Backlog
	if n.Fixture != "" {
		var err error
		if b, err = fakeapi.LoadFixture(n.Fixture); err != nil {
			return err
		}
	} else {
		b = fakeapi.Demo(n.Area)
	}
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := fakeapi.New(b, fakeapi.WithPrefix(n.Prefix), fakeapi.WithLogger(logger))
	defer srv.Close()

	ln, err := net.Listen("tcp", n.Addr)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	hs := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}

	out := n.Out
	if out == nil {
		out = color.Output
	}
	base := fmt.Sprintf("http://%s%s", ln.Addr(), n.Prefix)
	_, _ = fmt.Fprintf(out, "serving area %s at %s\n", color.New(color.Bold).Sprint(b.Area()), base)
	logger.Info("serving", "area", b.Area(), "addr", ln.Addr().String())
	if n.Ready != nil {
		n.Ready(base)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hs.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// websocket clients would keep Shutdown waiting
		srv.Close()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(sctx)
	})
	return g.Wait()
}
