package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/nibzard/todoapp-go/internal/config"
	"github.com/nibzard/todoapp-go/internal/server"
)

// serveCommand runs the HTTP server until ctx is cancelled.
func (a *app) serveCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todoapp serve", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	addr := fs.String("addr", a.cfg.Addr, "Listen address")
	staticDir := fs.String("static-dir", a.cfg.StaticDir, "Directory served at / (empty disables)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	svc, st, err := a.openService()
	if err != nil {
		return err
	}
	defer st.Close()

	a.logger.Info("using store", "backend", a.cfg.Store, "path", st.Path())
	srv := server.New(svc, server.Options{
		StaticDir:  *staticDir,
		RequestLog: a.cfg.RequestLog,
		Logger:     a.logger,
	})
	return srv.ListenAndServe(ctx, config.NormalizeAddr(*addr))
}
