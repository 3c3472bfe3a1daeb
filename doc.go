// Package identity provides the authentication and authorization core for a
// small ticket-tracking REST service: password hashing, stateless bearer
// tokens, a permission bit-set with per-resource access control lists, and a
// storage-agnostic repository contract with swappable backends.
//
// Storage:
//   - The Store interface exposes one sub-repository per resource type (users,
//     groups, projects, tickets) plus Initialize and a transaction bracket.
//     Two conforming backends ship with the module: memstore (volatile,
//     lock-guarded maps) and docstore (keyed documents over Bun/SQLite).
//     Business logic receives a Store once at startup and never branches on
//     the concrete backend.
//
// Tokens:
//   - TokenService issues HS256-signed tokens binding a subject to an absolute
//     expiry (seven days by default). Validity is re-derived from the signature
//     and clock on every check; there is no session state and, deliberately,
//     no server-side revocation short of rotating the signing secret.
//
// Middleware:
//   - middleware/tokenauth extracts a bearer credential from the Authorization
//     header or a cookie, validates it, re-checks the subject against the user
//     store (a deactivated account defeats an otherwise valid token), and
//     annotates the request with the verified subject.
//   - middleware/apikey accepts pre-shared keys for service-to-service calls.
package identity
