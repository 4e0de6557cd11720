package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/tracked-dev/tracked/pkg/metrics"
	"github.com/tracked-dev/tracked/pkg/persist"
	"github.com/tracked-dev/tracked/pkg/tracked"
	"github.com/tracked-dev/tracked/pkg/watch"
)

func serveCmd() *cobra.Command {
	var (
		addr        string
		namespace   string
		s3Bucket    string
		s3Prefix    string
		snapshotKey string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the watch server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			// The served document is a JSON object; map values share
			// backing storage, so snapshots need an explicit clone.
			tracker := tracked.New[map[string]any, string](map[string]any{}).
				WithClone(func(v map[string]any) map[string]any {
					return maps.Clone(v)
				})

			m := metrics.New(metrics.WithNamespace(namespace))

			if s3Bucket != "" {
				store, err := newS3Store(cmd.Context(), s3Bucket, s3Prefix)
				if err != nil {
					return err
				}

				restored, err := persist.Restore[map[string]any](cmd.Context(), store, snapshotKey)
				switch {
				case err == nil:
					tracker.Mutate(func(v *map[string]any) { *v = restored })
					logger.Info("restored snapshot", "bucket", s3Bucket, "key", snapshotKey)
				case errors.Is(err, persist.ErrNotFound):
					// First run, nothing to restore.
				default:
					return fmt.Errorf("restore snapshot: %w", err)
				}

				tracker.AddListener("persist", persist.NewSaver[map[string]any](store, snapshotKey,
					persist.WithOnError[map[string]any](func(err error) {
						logger.Error("snapshot save failed", "error", err)
					}),
				))
			}

			tracker.AddListener("log", tracked.ListenerFunc[map[string]any](func(old, new map[string]any) {
				logger.Info("document changed", "old", old, "new", new)
			}))

			server := watch.NewServer[map[string]any](tracker,
				watch.WithLogger(logger),
				watch.WithMetrics(m),
			)
			return server.ListenAndServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&namespace, "namespace", "tracked", "Prometheus metrics namespace")
	cmd.Flags().StringVar(&s3Bucket, "s3-bucket", "", "persist snapshots to this S3 bucket")
	cmd.Flags().StringVar(&s3Prefix, "s3-prefix", "snapshots/", "key prefix for S3 snapshots")
	cmd.Flags().StringVar(&snapshotKey, "snapshot-key", "document", "key snapshots are stored under")

	return cmd
}

func newS3Store(ctx context.Context, bucket, prefix string) (*persist.S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return persist.NewS3Store(s3.NewFromConfig(cfg), bucket, prefix), nil
}
