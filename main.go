// evtflat — Windows Security Event log flattener
//
// Extracts process-creation fields from event log exports and writes
// them as CSV rows.
//
// Usage:
//
//	evtflat text [input] [output]    # plain-text "Log Name:" block export
//	evtflat xml <input> [output]     # Event-Schema XML document
package main

import "github.com/redcanyon-sec/evtflat/cmd"

var version = "dev"

func main() {
	cmd.Execute(version)
}
