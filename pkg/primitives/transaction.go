package primitives

import (
	"fmt"
	"sync/atomic"
)

var transactionCounter int64

// TransactionID identifies the actor that dirtied a page. The storage core
// only uses it as a tag; there is no commit or abort protocol behind it.
type TransactionID struct {
	id int64
}

// NewTransactionID creates a new unique transaction ID
func NewTransactionID() *TransactionID {
	return &TransactionID{
		id: atomic.AddInt64(&transactionCounter, 1),
	}
}

// ID returns the numeric value of the transaction ID, 0 for nil.
func (tid *TransactionID) ID() int64 {
	if tid == nil {
		return 0
	}
	return tid.id
}

// Equals checks if two transaction IDs are equal
func (tid *TransactionID) Equals(other *TransactionID) bool {
	if tid == nil || other == nil {
		return tid == other
	}
	return tid.id == other.id
}

func (tid *TransactionID) String() string {
	if tid == nil {
		return "TransactionID(nil)"
	}
	return fmt.Sprintf("TransactionID(%d)", tid.id)
}

// Permissions represents the access level requested for a page. It is
// recorded by the page store for a future lock manager and is not enforced.
type Permissions int

const (
	ReadOnly Permissions = iota
	ReadWrite
)

func (p Permissions) String() string {
	switch p {
	case ReadOnly:
		return "READ_ONLY"
	case ReadWrite:
		return "READ_WRITE"
	default:
		return "UNKNOWN"
	}
}
