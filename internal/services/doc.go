// Package services implements the [Catalog] interface for the Spotify Web API.
//
// # Catalog Interface
//
// The catalog abstraction covers the small slice of the Web API this service
// needs: playlist search, playlist and user lookup, and the genre seed list.
//
// # Authentication
//
// [Client] authenticates with the OAuth2 client-credentials grant: a
// server-to-server app token with no end user involved. Tokens live in a
// single process-wide slot with a safety buffer subtracted from their expiry;
// refreshes are guarded by a mutex and [singleflight.Group] so concurrent
// cold-cache callers share one exchange.
//
// # Request policy
//
// Every outbound call waits on a [rate.Limiter]. A 401 response triggers one
// transparent re-authentication and retry; a second consecutive 401 is a
// terminal [shared.ErrAuthFailed]. 429 and 5xx responses are retried with
// capped exponential backoff; all other failures are terminal and surface as
// [shared.StatusError] values for the normalizer.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : client id or secret absent
//   - [shared.ErrAuthFailed] : token exchange failed or repeated 401
//   - [shared.StatusError] : any non-2xx API response, carrying the status
package services
