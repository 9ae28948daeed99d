// Package license implements the license binding and validation protocol
// for the trading-robot back office.
//
// # Architecture Overview
//
// The package holds the core state machine and nothing else:
//
//	- License: the capability-token entity and its derived states
//	- Authorize: the ordered validation checks (fail closed, no mutation)
//	- Bind: the atomic bind/update mutation applied on a successful check
//	- HistoryEntry: the append-only account-login audit trail
//
// Persistence, transport and configuration lookup live in their own
// packages; everything here is pure and synchronous so the protocol can
// be tested without a database.
//
// # Binding Model
//
// A license binds to exactly one trading account on first successful
// validation ("bind-on-first-use"):
//
//	1. SystemHash is nil until the first validation succeeds
//	2. The first validation records the caller's system hash and trade
//	   mode as authoritative for the rest of the license's life
//	3. Every later validation must present the same system hash; a
//	   mismatch is the anti-hijacking failure and never mutates state
//	4. The account login hash below the bound account may rotate freely;
//	   every accepted rotation is appended to the history log
//
// # Derived States
//
// Status is always computed from current field values at read time, so
// it can never go stale:
//
//	Inactive -> Expired -> NotBound -> BoundNoLogin -> ExpiringSoon -> Active
//
// The first matching state in that order wins.
package license
