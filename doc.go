// Package users implements a user management backend: CRUD over a User
// entity, stateless JWT authentication, role and authority assignment,
// login attempt throttling, profile image storage, and password reset
// email delivery.
//
// The authentication core is made of a TokenService that mints and
// verifies HMAC signed tokens carrying an ordered authorities claim, a
// LoginAttemptTracker that counts failed logins per identity with TTL
// and capacity bounds, a LockoutPolicy that flips the account locked
// flag when the tracker reports too many failures, and an authorization
// filter that turns a bearer token into a request scoped AuthContext.
package users
