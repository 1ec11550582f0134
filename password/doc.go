// Package password provides bcrypt password hashing for the credential
// lifecycle service.
package password
