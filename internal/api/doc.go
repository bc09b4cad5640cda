// Package api is the Proxmox VE HTTP transport used by the shell.
//
// # Files
//
//   - client.go: Client, Request and the Transport interface
//   - result.go: Result decoding and JSON helpers
//   - errors.go: APIError, RemoteError and ErrTaskTimeout
//   - retry.go: backoff retry for gateway errors on GET
//   - tasks.go: WaitForTask / PollTask for --wait
//   - schema.go: apidoc.js download and the per-version schema cache
//
// # Usage
//
//	client := api.NewClient(cfg, token)
//	r, err := client.Get(ctx, "/nodes", nil)
//	if err != nil {
//	    // transport failure
//	}
//	if !r.IsSuccessStatusCode() {
//	    return api.NewRemoteError(r, false)
//	}
//
// Failure statuses are returned as a *Result rather than an error so the
// caller decides how to present them.
package api
