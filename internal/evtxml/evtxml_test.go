package evtxml

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestParse_MinimalEvent(t *testing.T) {
	data, err := os.ReadFile("../../testdata/event_4688.xml")
	if err != nil {
		t.Fatalf("failed to read testdata: %v", err)
	}

	rec, err := Parse(string(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if rec.EventDate != "2024-01-15 10:30:00" {
		t.Errorf("EventDate = %q, want 2024-01-15 10:30:00", rec.EventDate)
	}
	if rec.Hostname != "WORKSTATION-01.corp.example.com" {
		t.Errorf("Hostname = %q", rec.Hostname)
	}
	if rec.User != "jdoe" {
		t.Errorf("User = %q, want jdoe", rec.User)
	}
	if rec.ProcessID != "0x1a2c" {
		t.Errorf("ProcessID = %q, want 0x1a2c", rec.ProcessID)
	}
	if rec.Image != `C:\Windows\System32\cmd.exe` {
		t.Errorf("Image = %q", rec.Image)
	}
	if rec.ProcessCommandLine != `cmd.exe /c "whoami /all"` {
		t.Errorf("ProcessCommandLine = %q", rec.ProcessCommandLine)
	}
	if rec.Hashes != "" {
		t.Errorf("Hashes = %q, want empty", rec.Hashes)
	}
}

func TestParse_DecoratedMatchesUndecorated(t *testing.T) {
	decorated, err := os.ReadFile("../../testdata/event_4688_decorated.xml")
	if err != nil {
		t.Fatalf("failed to read testdata: %v", err)
	}

	rec, err := Parse(string(decorated))
	if err != nil {
		t.Fatalf("Parse decorated: %v", err)
	}

	undecorated := strings.ReplaceAll(string(decorated), "- ", "")
	want, err := Parse(undecorated)
	if err != nil {
		t.Fatalf("Parse undecorated: %v", err)
	}

	if rec != want {
		t.Errorf("decorated record = %+v, want %+v", rec, want)
	}
	if rec.EventDate != "2024-01-15 10:30:00" {
		t.Errorf("EventDate = %q", rec.EventDate)
	}
}

func TestParse_MultiEventWrapper(t *testing.T) {
	content := `<Events>
  <Event xmlns='http://schemas.microsoft.com/win/2004/08/events/event'>
    <System>
      <TimeCreated SystemTime='2024-01-15T10:30:00Z'/>
      <Computer>host-a</Computer>
    </System>
    <EventData>
      <Data Name='SubjectUserName'>alice</Data>
    </EventData>
  </Event>
  <Event xmlns='http://schemas.microsoft.com/win/2004/08/events/event'>
    <System>
      <TimeCreated SystemTime='2024-02-20T08:00:00Z'/>
      <Computer>host-b</Computer>
    </System>
  </Event>
</Events>`

	rec, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Hostname != "host-a" {
		t.Errorf("Hostname = %q, want host-a (first event)", rec.Hostname)
	}
	if rec.User != "alice" {
		t.Errorf("User = %q, want alice", rec.User)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, content := range []string{"", "   \n\t\n"} {
		_, err := Parse(content)
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Parse(%q) error = %v, want ErrEmptyInput", content, err)
		}
	}
}

func TestParse_NotXML(t *testing.T) {
	longGarbage := strings.Repeat("this is not xml ", 20)
	_, err := Parse(longGarbage)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want ParseError", err)
	}
	if len(pe.Preview) > 200 {
		t.Errorf("preview is %d chars, want at most 200", len(pe.Preview))
	}
	if pe.Preview == "" {
		t.Error("preview should not be empty")
	}
}

func TestParse_PreviewShowsOriginalContent(t *testing.T) {
	// The preview reflects the file as supplied, decoration included,
	// not the cleaned working copy.
	content := "- <NotAnEvent>\n- <Oops>\n"
	_, err := Parse(content)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want ParseError", err)
	}
	if !strings.HasPrefix(pe.Preview, "- <NotAnEvent>") {
		t.Errorf("preview = %q, want original decorated content", pe.Preview)
	}
}

func TestParse_MalformedTimestamp(t *testing.T) {
	content := `<Event xmlns='http://schemas.microsoft.com/win/2004/08/events/event'>
  <System>
    <TimeCreated SystemTime='yesterday at noon'/>
    <Computer>host-a</Computer>
  </System>
</Event>`

	_, err := Parse(content)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want ParseError", err)
	}
}

func TestParse_MissingTimestampIsFatal(t *testing.T) {
	content := `<Event xmlns='http://schemas.microsoft.com/win/2004/08/events/event'>
  <System>
    <Computer>host-a</Computer>
  </System>
</Event>`

	if _, err := Parse(content); err == nil {
		t.Fatal("expected error for missing TimeCreated")
	}
}

func TestParse_DuplicateDataNameLastWins(t *testing.T) {
	content := `<Event xmlns='http://schemas.microsoft.com/win/2004/08/events/event'>
  <System>
    <TimeCreated SystemTime='2024-01-15T10:30:00Z'/>
    <Computer>host-a</Computer>
  </System>
  <EventData>
    <Data Name='SubjectUserName'>first</Data>
    <Data Name='SubjectUserName'>second</Data>
  </EventData>
</Event>`

	rec, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.User != "second" {
		t.Errorf("User = %q, want second", rec.User)
	}
}

func TestParse_AbsentDataTextIsEmpty(t *testing.T) {
	content := `<Event xmlns='http://schemas.microsoft.com/win/2004/08/events/event'>
  <System>
    <TimeCreated SystemTime='2024-01-15T10:30:00Z'/>
    <Computer>host-a</Computer>
  </System>
  <EventData>
    <Data Name='CommandLine'/>
    <Data Name='SubjectUserName'>jdoe</Data>
  </EventData>
</Event>`

	rec, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.ProcessCommandLine != "" {
		t.Errorf("ProcessCommandLine = %q, want empty", rec.ProcessCommandLine)
	}
	if rec.User != "jdoe" {
		t.Errorf("User = %q, want jdoe", rec.User)
	}
}

func TestParse_NoEventDataGivesEmptyFields(t *testing.T) {
	content := `<Event xmlns='http://schemas.microsoft.com/win/2004/08/events/event'>
  <System>
    <TimeCreated SystemTime='2024-01-15T10:30:00Z'/>
    <Computer>host-a</Computer>
  </System>
</Event>`

	rec, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.Hostname != "host-a" {
		t.Errorf("Hostname = %q, want host-a", rec.Hostname)
	}
	if rec.User != "" || rec.ProcessID != "" || rec.Image != "" || rec.ProcessCommandLine != "" {
		t.Errorf("expected empty EventData fields, got %+v", rec)
	}
}

func TestStripDecoration(t *testing.T) {
	in := "  - <Event>\n\t- <System>\n- </Event>\nplain line\n"
	want := "<Event>\n<System>\n</Event>\nplain line\n"
	if got := stripDecoration(in); got != want {
		t.Errorf("stripDecoration = %q, want %q", got, want)
	}
}
