// Package httputil provides HTTP plumbing shared by the renderer and the
// pipeline.
//
// # Clients
//
// [NewClient] builds the plain client used for rendering requests. It has a
// fixed timeout and no automatic retries: the renderer decides itself when a
// request is worth repeating (for example after sanitizing labels).
//
// # Probing
//
// [Probe] checks that a rendering service answers at all before a run starts.
// It goes through hashicorp/go-retryablehttp, so transient 5xx responses and
// connection resets are retried with backoff:
//
//	if err := httputil.Probe(ctx, "https://kroki.io", logger); err != nil {
//	    return err // NETWORK_ERROR
//	}
package httputil
