package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"foodtracker/healthz"
	"foodtracker/poller"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

var (
	debugListen     = flag.String("debug-listen", "127.0.0.1:8001", "Server address:port for debug endpoint.")
	recheckPeriod   = flag.Duration("recheck-period", 1*time.Hour, "Time between sweeps")
	dataProject     = flag.String("data-project", "", "GCP project that contains the application state.")
	userImageBucket = flag.String("user-image-bucket", "user_bk", "Storage bucket that holds profile images.")
	foodImageBucket = flag.String("food-image-bucket", "food_bk", "Storage bucket that holds food images.")
)

func main() {
	flag.Parse()

	slog.Info("Starting up")
	slog.Info(
		"Flags",
		slog.String("debug-listen", *debugListen),
		slog.Duration("recheck-period", *recheckPeriod),
		slog.String("data-project", *dataProject),
		slog.String("user-image-bucket", *userImageBucket),
		slog.String("food-image-bucket", *foodImageBucket),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := do(ctx); err != nil {
		slog.ErrorContext(ctx, "Error", slog.Any("err", err))
		os.Exit(255)
	}
}

func do(ctx context.Context) error {
	fstore, err := firestore.NewClient(ctx, *dataProject)
	if err != nil {
		return fmt.Errorf("while creating FireStore client: %w", err)
	}

	gcs, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("while creating GCS client: %w", err)
	}

	ready := healthz.New()
	ready.AddCheck("firestore", func() error {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if _, err := fstore.Collections(checkCtx).Next(); err != nil && err != iterator.Done {
			return err
		}
		return nil
	})

	debugServeMux := http.NewServeMux()
	debugServeMux.Handle("/healthz", healthz.New())
	debugServeMux.Handle("/readyz", ready)
	debugServeMux.HandleFunc("/debug/pprof/", pprof.Index)
	debugServeMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugServeMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugServeMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugServeMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	debugServer := &http.Server{
		Addr:    *debugListen,
		Handler: debugServeMux,

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := debugServer.ListenAndServe(); err != nil {
			slog.Error("Debug server died", slog.Any("err", err))
			os.Exit(255)
		}
	}()

	p := poller.New(fstore, gcs, *userImageBucket, *foodImageBucket, *recheckPeriod)
	return p.Run(ctx)
}
