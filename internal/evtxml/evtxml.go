// Package evtxml extracts a process-creation record from a Windows
// Event-Schema XML document.
package evtxml

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/clbanning/mxj"

	"github.com/redcanyon-sec/evtflat/internal/record"
)

// EventNS is the Windows Event Schema namespace.
const EventNS = "http://schemas.microsoft.com/win/2004/08/events/event"

// outputTimeLayout is the human-readable form written to the CSV.
const outputTimeLayout = "2006-01-02 15:04:05"

// previewLen caps the input preview attached to parse errors.
const previewLen = 200

// ErrEmptyInput is returned when the input contains no content.
var ErrEmptyInput = errors.New("input file is empty")

// ParseError reports a structural failure of the XML document, with
// guidance and a short preview of the offending input.
type ParseError struct {
	Reason  string
	Preview string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// EventData field names mapped onto the output schema.
const (
	dataSubjectUserName = "SubjectUserName"
	dataNewProcessID    = "NewProcessId"
	dataNewProcessName  = "NewProcessName"
	dataCommandLine     = "CommandLine"
)

// Parse extracts one record from an Event-Schema XML document. The input
// may be decorated with "- " line prefixes or wrapped in a multi-event
// container; both are recovered before structural parsing.
func Parse(content string) (record.Record, error) {
	if strings.TrimSpace(content) == "" {
		return record.Record{}, ErrEmptyInput
	}

	working := stripDecoration(content)
	if !startsWithEvent(working) {
		if recovered, ok := recoverEvent(working); ok {
			working = recovered
		}
	}

	// Errors carry a preview of the file's content as supplied, not the
	// cleaned working copy.
	m, err := mxj.NewMapXml([]byte(working))
	if err != nil {
		return record.Record{}, parseError(content, err)
	}

	event := findEvent(m, true)
	if event == nil {
		event = findEvent(m, false)
	}
	if event == nil {
		return record.Record{}, parseError(content, nil)
	}

	system := childMap(event, "System")

	eventDate, err := formatSystemTime(system)
	if err != nil {
		return record.Record{}, &ParseError{
			Reason:  "malformed TimeCreated timestamp",
			Preview: preview(content),
			Err:     err,
		}
	}

	data := eventDataFields(event)

	return record.Record{
		EventDate:          eventDate,
		Hostname:           childText(system, "Computer"),
		User:               data[dataSubjectUserName],
		ProcessID:          data[dataNewProcessID],
		Image:              data[dataNewProcessName],
		ProcessCommandLine: data[dataCommandLine],
		// The Event Schema variant handled here carries no hash data.
		Hashes: "",
	}, nil
}

// stripDecoration removes per-line leading whitespace and the "- "
// prefix some export tools put in front of every line. Purely textual,
// applied before any structural parsing.
func stripDecoration(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		line = strings.TrimLeft(line, " \t")
		line = strings.TrimPrefix(line, "- ")
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// startsWithEvent reports whether the first significant token of the
// content is an Event element open tag. "<Events>" and other tags that
// merely share the prefix do not count.
func startsWithEvent(content string) bool {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "<Event") {
		return false
	}
	rest := s[len("<Event"):]
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ' ', '\t', '\r', '\n', '>', '/':
		return true
	}
	return false
}

// recoverEvent handles wrapper documents that contain one or more Event
// elements below some other root. It returns the serialized form of the
// first Event element found; failures are surfaced as warnings and the
// caller proceeds with the content unchanged.
func recoverEvent(content string) (string, bool) {
	m, err := mxj.NewMapXml([]byte(content))
	if err != nil {
		slog.Warn("event recovery failed, parsing content as-is", "error", err)
		return "", false
	}

	event := findEvent(m, true)
	if event == nil {
		event = findEvent(m, false)
	}
	if event == nil {
		slog.Warn("event recovery found no Event element, parsing content as-is")
		return "", false
	}

	out, err := mxj.Map(map[string]interface{}{"Event": event}).Xml()
	if err != nil {
		slog.Warn("event recovery failed, parsing content as-is", "error", err)
		return "", false
	}
	return string(out), true
}

// findEvent locates the first Event element anywhere in the document.
// With requireNS set, only elements declared in the Windows Event Schema
// namespace match; otherwise any Event tag does, prefixed or not.
func findEvent(m map[string]interface{}, requireNS bool) map[string]interface{} {
	for key, value := range m {
		child, ok := value.(map[string]interface{})
		if !ok {
			if list, ok := value.([]interface{}); ok {
				for _, item := range list {
					if cm, ok := item.(map[string]interface{}); ok {
						if found := matchEvent(key, cm, requireNS); found != nil {
							return found
						}
					}
				}
			}
			continue
		}
		if found := matchEvent(key, child, requireNS); found != nil {
			return found
		}
	}
	return nil
}

func matchEvent(key string, m map[string]interface{}, requireNS bool) map[string]interface{} {
	if key == "Event" || strings.HasSuffix(key, ":Event") {
		if !requireNS || declaresEventNS(m) {
			return m
		}
	}
	return findEvent(m, requireNS)
}

// declaresEventNS reports whether the element carries an xmlns
// declaration for the Event Schema namespace.
func declaresEventNS(m map[string]interface{}) bool {
	for key, value := range m {
		if key == "-xmlns" || strings.HasPrefix(key, "-xmlns:") {
			if s, ok := value.(string); ok && s == EventNS {
				return true
			}
		}
	}
	return false
}

// formatSystemTime reads TimeCreated's SystemTime attribute and
// reformats it for output. A missing or malformed timestamp is a fatal
// parse error, not a per-field fallback.
func formatSystemTime(system map[string]interface{}) (string, error) {
	tc := childMap(system, "TimeCreated")
	raw := attr(tc, "SystemTime")
	if raw == "" {
		return "", errors.New("missing TimeCreated SystemTime attribute")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return "", err
	}
	return t.Format(outputTimeLayout), nil
}

// eventDataFields collects the Data elements under EventData into a
// name/value map. Duplicate names keep the last occurrence; absent text
// is an empty string.
func eventDataFields(event map[string]interface{}) map[string]string {
	fields := make(map[string]string)

	eventData := childMap(event, "EventData")
	if eventData == nil {
		return fields
	}

	raw, ok := child(eventData, "Data")
	if !ok {
		return fields
	}

	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	default:
		items = []interface{}{v}
	}

	for _, item := range items {
		dm, ok := item.(map[string]interface{})
		if !ok {
			// A bare <Data> element carries no Name attribute.
			continue
		}
		name := attr(dm, "Name")
		if name == "" {
			continue
		}
		text, _ := dm["#text"].(string)
		fields[name] = text
	}

	return fields
}

// child returns the value for name, matching either the plain tag or a
// namespace-prefixed variant.
func child(m map[string]interface{}, name string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	if v, ok := m[name]; ok {
		return v, true
	}
	for key, v := range m {
		if strings.HasSuffix(key, ":"+name) {
			return v, true
		}
	}
	return nil, false
}

func childMap(m map[string]interface{}, name string) map[string]interface{} {
	v, ok := child(m, name)
	if !ok {
		return nil
	}
	cm, _ := v.(map[string]interface{})
	return cm
}

// childText returns the text content of a child element, whether mxj
// parsed it as a plain string or as a map with attributes.
func childText(m map[string]interface{}, name string) string {
	v, ok := child(m, name)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}:
		s, _ := t["#text"].(string)
		return s
	}
	return ""
}

// attr reads an attribute value using mxj's hyphen-prefix convention.
func attr(m map[string]interface{}, name string) string {
	if m == nil {
		return ""
	}
	s, _ := m["-"+name].(string)
	return s
}

func parseError(content string, err error) *ParseError {
	return &ParseError{
		Reason:  "input is not a valid Event Schema XML document (expected an <Event> root in the " + EventNS + " namespace, UTF-8 or UTF-16 encoded)",
		Preview: preview(content),
		Err:     err,
	}
}

// preview returns the first previewLen characters of content,
// best-effort.
func preview(content string) string {
	if len(content) <= previewLen {
		return content
	}
	// Avoid splitting a multi-byte rune at the cut point.
	cut := previewLen
	for cut > 0 && !isRuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
