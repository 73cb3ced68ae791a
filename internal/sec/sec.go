// Package sec provides the security primitives for the web application.
//
// # Passwords
//
// Passwords are hashed with bcrypt before storage. [HashPassword] produces a
// salted digest at a fixed work factor; [VerifyPassword] checks a candidate
// against a stored digest and reports a plain boolean, so a wrong password is
// never an error condition.
//
// # Sessions
//
// A logged-in browser carries a single HMAC-signed cookie whose payload is the
// authenticated user's ID, encoded and verified by [Sessions] on top of
// gorilla/securecookie. The signature makes the payload tamper-evident: a
// cookie that is absent, malformed, expired, or fails verification is
// indistinguishable to callers from no session at all.
package sec
