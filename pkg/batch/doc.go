// Package batch executes large batches of independent HTTP requests.
//
// Items are read lazily from an iterator, numbered 0..N-1 and pushed into a
// bounded main queue. A pool of main workers turns each item into a request
// via a RequestFactory, performs it with a run-scoped pooled client and hands
// successful JSON responses to a ResponseAdapter. Transient failures (network
// errors and 500/502/503/504) go to an unbounded dead-letter queue served by
// its own worker pool; permanent failures are dropped and reported to the
// FailureHandler.
//
// Usage:
//
//	exec, err := batch.New(batch.Config[int]{
//	    Factory: batch.RequestFactoryFunc[int](func(id int) (*batch.Request, error) {
//	        return &batch.Request{URL: fmt.Sprintf("https://example.com/item/%d.json", id)}, nil
//	    }),
//	    Adapter: batch.ResponseAdapterFunc[int](func(index, id int, resp *batch.Response) error {
//	        var item Item
//	        return resp.Decode(&item)
//	    }),
//	    Client: client.DefaultConfig("my-app/1.0"),
//	})
//	if err != nil {
//	    return err
//	}
//	err = exec.RunSlice(ctx, ids, batch.DefaultSettings())
//
// Run returns once every index was delivered or dropped. Each index reaches
// the adapter at most once.
package batch
