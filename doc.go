// Package fetchgate coordinates typed access to an HTTP API from a client
// application:
//
//   - One lock per (resource path, verb): operations on the same pair run one
//     at a time, everything else runs concurrently
//   - Cache-aside reads with a short default lifetime (3s) and one network
//     fetch per URL no matter how many callers are waiting
//   - Writes evict the cached entry for their resource path
//   - A connectivity check before every operation
//   - Pluggable transport, so the network can be replaced by mock.Dispatcher
//   - Prometheus metrics and structured debug logging
//
// Operations are generic functions over a *Client:
//
//	client := fetchgate.New(
//	    fetchgate.WithBaseURL("http://localhost:7201"),
//	    fetchgate.WithConnectivity(probe),
//	)
//	user, err := fetchgate.Read[User](ctx, client, "/users/42")
//	created, err := fetchgate.Create[User](ctx, client, "/users", NewUser{Name: "Ada"})
//
// Relative reads are cached under their resolved path and query, absolute
// reads under the full URL. Writes evict the resolved bare path, so a read of
// "/users/1" is evicted by a write to "/users/1" whatever the base URL's path
// prefix, while a read of "/users?page=2" is not evicted by a write to
// "/users".
//
// There are no retries. Transport and decode errors reach the caller
// unchanged; errors raised by the client itself are *ClientError values that
// match the package sentinels through errors.Is.
package fetchgate
