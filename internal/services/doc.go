// Package services defines the [Service] interface for AT Protocol accounts and implements it for Bluesky PDS hosts.
//
// # Service Interface
//
// A [Service] is a client bound to one account. The migration pipeline holds
// two of them: one authenticated against the source account and one against
// the destination account. Sessions are never shared between the two.
//
// # Bluesky Implementation
//
// [BlueskyService] speaks XRPC over HTTPS to a PDS (https://bsky.social by default).
// Four endpoints cover everything the pipeline needs:
//   - com.atproto.server.createSession : app-password authentication
//   - app.bsky.graph.getList : cursor-paginated membership reads
//   - com.atproto.repo.createRecord (app.bsky.graph.list) : list creation
//   - com.atproto.repo.createRecord (app.bsky.graph.listitem) : membership writes
//
// The access JWT returned by createSession is sent as a Bearer token on
// subsequent calls. Refresh tokens are held but sessions are short-lived
// enough for a single run that refresh is not attempted automatically.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrInvalidCredentials] : createSession rejected the handle/password
//   - [shared.ErrNotAuthenticated] : Authenticate() not called before a read/write
//   - [shared.ErrListNotFound] : getList could not resolve the list
//   - [shared.ErrInvalidListRef] : the AT-URI failed syntactic validation
//   - [shared.ErrTransient] : network failure or 5xx from the PDS
//   - [shared.ErrCreateRejected] : createRecord validation failure
//
// # List References
//
// Lists are addressed by AT-URIs of the form at://<did>/app.bsky.graph.list/<rkey>.
// [ParseListURI] validates references up front so malformed input fails before
// any network call, never mid-pagination.
package services
