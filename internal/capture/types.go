// internal/capture/types.go
package capture

import "time"

// Kind is the classification of one framed message.
type Kind uint8

const (
	// KindEmpty: no printable bytes and no protocol marker. Dropped.
	KindEmpty Kind = iota
	// KindProtocol: scanner acknowledgment frame. Dropped.
	KindProtocol
	// KindBarcode: scan data. Published to the mailbox.
	KindBarcode
)

func (k Kind) String() string {
	switch k {
	case KindProtocol:
		return "protocol"
	case KindBarcode:
		return "barcode"
	default:
		return "empty"
	}
}

// Protocol acknowledgment marker: first two bytes of a scanner reply frame.
const (
	markerHi byte = 0x02
	markerLo byte = 0x00
)

// Printable ASCII range, inclusive.
const (
	printableMin byte = 0x20
	printableMax byte = 0x7E
)

// Message is one framed message, owned by value.
// Created at flush, consumed by classification, then discarded.
type Message struct {
	Data []byte
	Len  int
	At   time.Time
}

// Result is what one flush produced.
type Result struct {
	Message   Message
	Kind      Kind
	Printable string // printable subsequence (empty for protocol frames)
	Replaced  bool   // an undelivered payload was overwritten
}
