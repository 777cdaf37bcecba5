package domain

import "time"

// User is the account a slot owner authenticates as. The core trusts the
// identity resolved by the transport layer; this record exists so responders
// can be resolved and notified by email.
type User struct {
	ID           string    `cbor:"id"`
	Name         string    `cbor:"name"`
	Email        string    `cbor:"email"`
	PasswordHash string    `cbor:"password_hash"`
	CreatedAt    time.Time `cbor:"created_at"`
}
