package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nyiyui.ca/hato/shingo/kujo"
	"nyiyui.ca/hato/shingo/snapshot"
	"nyiyui.ca/hato/shingo/tal/interlock"
)

var saveEvery time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interlocking and publish it over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, il, err := load()
		if err != nil {
			return err
		}
		st, err := snapshot.Open(c.Database)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := restore(st, il); err != nil {
			return err
		}

		ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		loop := interlock.NewLoop(il)
		loopDone := make(chan error, 1)
		go func() { loopDone <- loop.Run(ctx) }()

		k := kujo.NewServer(loop, kujo.Conf{AllowedOrigins: c.AllowedOrigins})
		defer k.Close()
		go func() {
			if err := k.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zap.S().Errorf("kujo: %s", err)
			}
		}()
		srv := &http.Server{
			Addr:    c.Listen,
			Handler: k.Handler(),
		}
		go func() {
			zap.S().Infof("listening on %s", c.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zap.S().Errorf("http: %s", err)
				stop()
			}
		}()
		if saveEvery > 0 {
			go saveLoop(ctx, loop, st)
		}

		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.S().Warnf("http shutdown: %s", err)
		}
		<-loopDone
		// the loop has stopped, so il has no other owner
		if err := st.Save(snapshot.Capture(il)); err != nil {
			return err
		}
		zap.S().Infof("saved snapshot to %s", c.Database)
		return nil
	},
}

func init() {
	serveCmd.Flags().DurationVar(&saveEvery, "save-every", time.Minute, "interval between snapshots (0 saves only on exit)")
}

// restore applies the saved snapshot, if any, to il.
func restore(st *snapshot.Store, il *interlock.Interlocking) error {
	s, err := st.Load()
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		zap.S().Infof("no snapshot, starting fresh")
		return nil
	}
	if err != nil {
		return err
	}
	if err := snapshot.Apply(il, s); err != nil {
		return err
	}
	zap.S().Infof("restored snapshot")
	return nil
}

func saveLoop(ctx context.Context, loop *interlock.Loop, st *snapshot.Store) {
	t := time.NewTicker(saveEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		var s snapshot.Snapshot
		err := loop.Do(ctx, func(il *interlock.Interlocking) error {
			s = snapshot.Capture(il)
			return nil
		})
		if err != nil {
			return
		}
		if err := st.Save(s); err != nil {
			zap.S().Errorf("save snapshot: %s", err)
		}
	}
}
