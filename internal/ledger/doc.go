// Package ledger tracks household finances: homes, member contributions,
// and transfers between members.
//
// Amounts are integer pence/cents throughout. A member's balance is what
// they contributed, minus what they sent to others, plus what they
// received.
package ledger
