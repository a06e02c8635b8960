// Package transloader provides a Go client for the Transloadit media
// processing API. It submits assemblies (processing jobs), lists and
// replays them, and exposes per-assembly status handles with cancellation.
//
// # Quick Start
//
//	c, err := transloader.New(key, secret)
//	if err != nil {
//	    return err
//	}
//
//	// Submit a job from a stored template.
//	a, err := c.CreateAssembly(ctx, "template-id",
//	    transloader.WithFile("video.mp4", f),
//	    transloader.WithNotifyURL("https://example.com/hook"),
//	)
//
//	// Poll the assembly until it finishes.
//	done, err := a.Completed(ctx)
//
// # Listing
//
// Assemblies returns a pull-driven iterator that fetches one page per
// remote call and yields handles pre-seeded with the list item's fields:
//
//	it := c.Assemblies(transloader.WithType("completed"))
//	for it.Next(ctx) {
//	    fmt.Println(it.Assembly().URL())
//	}
//	if err := it.Err(); err != nil {
//	    return err
//	}
//
// # Authentication
//
// Every API request carries an auth block {key, expires} inside its params
// document, JSON-serialized and signed with HMAC-SHA1 over the exact bytes
// sent. The signature travels alongside the params as a second field.
//
// Remote failures surface as [RemoteError] values carrying the server's error
// code, message, and HTTP status. The client never retries; callers own
// that policy.
package transloader
