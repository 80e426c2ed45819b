package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodtracker/dblayer"
	"foodtracker/healthz"
	"foodtracker/httpmetrics"
	"foodtracker/imagestore"
	"foodtracker/webui"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"contrib.go.opencensus.io/exporter/stackdriver"
	"github.com/golang/glog"
	"google.golang.org/api/iterator"
)

var (
	debugListen     = flag.String("debug-listen", "127.0.0.1:8001", "Server address:port for debug endpoint.")
	uiListen        = flag.String("ui-listen", "127.0.0.1:8000", "Server address:port for ui endpoint.")
	dataProject     = flag.String("data-project", "", "GCP project that contains the application state.")
	userImageBucket = flag.String("user-image-bucket", "user_bk", "Storage bucket that holds profile images.")
	foodImageBucket = flag.String("food-image-bucket", "food_bk", "Storage bucket that holds food images.")
	enableMetrics   = flag.Bool("enable-metrics", false, "Export request metrics to Stackdriver.")
)

func main() {
	flag.Parse()

	glog.Infof("flags:")
	glog.Infof("debug-listen: %v", *debugListen)
	glog.Infof("ui-listen: %v", *uiListen)
	glog.Infof("data-project: %v", *dataProject)
	glog.Infof("user-image-bucket: %v", *userImageBucket)
	glog.Infof("food-image-bucket: %v", *foodImageBucket)
	glog.Infof("enable-metrics: %v", *enableMetrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := do(ctx); err != nil {
		glog.Exitf("Error: %v", err)
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
	ready.AddCheck("storage", func() error {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if _, err := gcs.Bucket(*userImageBucket).Attrs(checkCtx); err != nil {
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

	ui := webui.New(dblayer.New(fstore), imagestore.New(gcs), *userImageBucket, *foodImageBucket)
	uiServeMux := http.NewServeMux()
	ui.Register(uiServeMux)

	metrics := httpmetrics.New(uiServeMux)
	if *enableMetrics {
		metrics.RegisterMetrics()

		exporter, err := stackdriver.NewExporter(stackdriver.Options{
			MetricPrefix:      "foodtracker",
			ReportingInterval: 60 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("while initializing metrics exporter: %w", err)
		}
		exporter.StartMetricsExporter()
		defer exporter.Flush()
		defer exporter.StopMetricsExporter()
	}

	uiServer := &http.Server{
		Addr:    *uiListen,
		Handler: metrics,

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := debugServer.ListenAndServe(); err != nil {
			glog.Fatalf("Debug server died: %v", err)
		}
	}()

	go func() {
		if err := uiServer.ListenAndServe(); err != nil {
			glog.Fatalf("UI server died: %v", err)
		}
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	<-signalCh

	glog.Flush()

	return nil
}
