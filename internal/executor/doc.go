// Package executor runs one task per cluster with bounded concurrency.
//
// Tasks are submitted to a Pool and executed together; the pool never stops
// early because one cluster failed, and results come back in submission order
// so multi-cluster output stays stable between runs.
//
//	pool := executor.NewPool(parallel, logger)
//	for _, client := range clients {
//	    admin := ops.New(client)
//	    pool.Submit(executor.Task{
//	        ClusterName: client.Name(),
//	        Execute: func(ctx context.Context) (interface{}, error) {
//	            return admin.ListIndexes(ctx)
//	        },
//	    })
//	}
//	results := pool.Execute(ctx)
//	if err := executor.Err(results); err != nil {
//	    ...
//	}
//
// Concurrency is bounded with golang.org/x/sync/errgroup. Cancelling the
// context prevents tasks that have not started from running; they are
// reported with an error wrapping the context error.
package executor
