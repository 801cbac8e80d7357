// Package models defines the core domain models for RoomSplit.
//
// # Vocabulary
//
//   - Room: a shared-expense group, owned by one registered user
//   - Member: a named ledger participant inside a room; a member does not
//     need a user account
//   - RoomMember: a registered user's membership in a room, distinct from
//     Member (members are ledger rows, room members are logins)
//   - Bill: one dated expense to be split; amounts are integer cents
//   - Share: one member's obligation for one bill
//   - Invite: a time/use-limited join token for a room
//
// # Design principles
//
//  1. Money never leaves integer minor units. There is no float64 amount
//     anywhere in the domain; decimal input is converted to cents at the
//     HTTP boundary.
//  2. A Bill and its Shares are created together and are immutable except
//     for each Share's Paid flag.
//  3. Relationships use ID strings instead of pointers to avoid circular
//     references.
package models
