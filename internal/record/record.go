// Package record defines the normalized event shape shared by both
// extractors.
package record

// Columns is the fixed output column order. Every emitted row has exactly
// these fields, in this order, with empty strings for anything the source
// did not carry.
var Columns = []string{
	"eventdate",
	"hostname",
	"user",
	"processid",
	"image",
	"processcommandline",
	"hashes",
}

// Record is one flattened process-creation event.
type Record struct {
	EventDate          string
	Hostname           string
	User               string
	ProcessID          string
	Image              string
	ProcessCommandLine string
	Hashes             string
}

// Row returns the field values in Columns order.
func (r Record) Row() []string {
	return []string{
		r.EventDate,
		r.Hostname,
		r.User,
		r.ProcessID,
		r.Image,
		r.ProcessCommandLine,
		r.Hashes,
	}
}

// Empty reports whether no field was extracted.
func (r Record) Empty() bool {
	for _, v := range r.Row() {
		if v != "" {
			return false
		}
	}
	return true
}
