// Package atrng streams randomness to the atdevs collection endpoint and
// serves hashed randomness from the atdevs entropy API.
//
// A Client keeps one outbound Socket.IO connection shared by two
// independent schedulers:
//
//   - the keepalive scheduler sends a block of fresh random bytes every
//     KeepaliveInterval so the endpoint sees a live connection;
//   - the discard scheduler drains the bytes handed to [Client.Discard]
//     every DiscardInterval and sends their SHA-512 digest.
//
// Delivery is best effort. A send attempted while disconnected is dropped
// and the next tick reconnects.
//
// # Basic Usage
//
//	c, err := atrng.New(atrng.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := c.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Stop()
//
//	_ = c.Discard(atrng.Text("keyboard timings 112 87 143"))
//
//	hex, err := c.RandomnessAsText(ctx)
//
// # Dependency Injection
//
// For testing, the transport and the entropy source can be replaced:
//
//	c, err := atrng.New(cfg,
//	    atrng.WithDialer(fakeDialer),
//	    atrng.WithHTTPClient(srv.Client()),
//	    atrng.WithLogger(logger),
//	)
//
// # Lifecycle States
//
// A Client is in one of [StateStopped], [StateStarting], [StateRunning],
// [StateStopping] or [StateCrashed]. Use [Client.Status] to query it and
// [WithEventHandler] to observe transitions and sends.
package atrng
