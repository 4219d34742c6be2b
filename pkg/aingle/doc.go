// Package aingle provides a Go client for AIngle nodes: request/response
// calls over the node's HTTP API plus a WebSocket push channel for
// entry-creation notifications.
//
// A Client is constructed without opening any connection; the socket channel
// is bracketed explicitly around the working lifetime:
//
//	client, err := aingle.New(
//	    aingle.WithNodeURL("http://localhost:8080"),
//	    aingle.WithSocketURL("ws://localhost:8081"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Disconnect()
//
//	hash, err := client.CreateEntry(ctx, map[string]string{"data": "Hello, AIngle!"})
//	entry, err := client.GetEntry(ctx, hash)
//
//	cancel, err := client.Subscribe(ctx, func(e *aingle.Entry) {
//	    fmt.Println("new entry:", e.Hash)
//	})
//	defer cancel()
//
// All failures carry an *Error with a machine-readable Code; ErrNotFound and
// ErrNotConnected are wrapped where applicable so errors.Is works. The
// client is safe for concurrent use by multiple goroutines.
package aingle
