// internal/capture/classify.go
package capture

// Classify tags a framed message.
// Marker first: a frame starting 0x02 0x00 is protocol regardless of the rest.
// Otherwise the printable subsequence decides; non-printable bytes are
// skipped, never treated as delimiters.
func Classify(msg Message) (Kind, string) {
	data := msg.Data[:msg.Len]

	if IsProtocol(data) {
		return KindProtocol, ""
	}

	p := Printable(data)
	if p == "" {
		return KindEmpty, ""
	}
	return KindBarcode, p
}

// IsProtocol reports whether data starts with the acknowledgment marker.
func IsProtocol(data []byte) bool {
	return len(data) >= 2 && data[0] == markerHi && data[1] == markerLo
}

// Printable keeps bytes in 0x20..0x7E, in order.
func Printable(data []byte) string {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		if b >= printableMin && b <= printableMax {
			out = append(out, b)
		}
	}
	return string(out)
}
