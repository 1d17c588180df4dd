// Package order contains the Order aggregate, its status machine and the
// payment kind value object. The status machine is deliberately strict:
// any write that does not follow the transition table is refused here, and
// the storage layer re-checks the expected prior status on update so that
// concurrent confirmations resolve to exactly one winner.
package order
