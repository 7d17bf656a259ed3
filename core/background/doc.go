// Package background runs fire-and-forget jobs on a bounded worker pool.
//
// Jobs are enqueued without blocking the caller: when the queue is full the
// job is dropped and logged rather than stalling a request handler. The
// executor integrates with errgroup via Run and drains in-flight jobs on
// shutdown, bounded by a configurable timeout.
//
// Usage:
//
//	exec, err := background.New(background.WithWorkers(2))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	g, ctx := errgroup.WithContext(context.Background())
//	g.Go(exec.Run(ctx))
//
//	exec.Enqueue("replicate-artifact", func(ctx context.Context) error {
//		return replicator.Upload(ctx, key, data)
//	})
package background
