// Package accounts is a user-account backend built around dual-token
// authentication (short-lived access tokens, store-backed refresh tokens)
// plus the account lifecycle rules every protected operation runs through.
//
// Tokens:
//   - TokenService signs and verifies HS256 tokens. Claims carry an explicit
//     kind discriminant ("access" vs "refresh"); access claims embed the full
//     identity snapshot while refresh claims carry only the account id.
//   - SessionStore keeps the single currently valid refresh token per account
//     (Redis, 24h TTL). A new login overwrites the prior entry, which revokes
//     the previous refresh token; logout deletes the entry.
//
// Authorization:
//   - Gate is the request-time decision procedure. It validates the bearer
//     token, exchanges a valid refresh token for a fresh access token against
//     the SessionStore, and enforces role and self-ownership policies per
//     route. Store or database failures always deny.
//
// Lifecycle:
//   - Accounts move between normal, stopped, dormant, and deleted. The
//     StateMachine owns the transition rules; the Sweeper flags accounts that
//     have not logged in for six months as dormant.
package accounts
