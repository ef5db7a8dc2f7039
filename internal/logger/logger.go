// Package logger carries diagnostics through the bundler pipeline instead of
// printing directly, the same separation the teacher's own logger keeps
// between "something worth telling the user" and "how it reaches a
// terminal". funee has no concurrent producers (see SPEC_FULL.md §5's
// single-threaded fixed-point walk) so, unlike the teacher's logger,
// nothing here needs a mutex or a deferred-message channel.
package logger

import (
	"fmt"
	"os"
	"sort"
)

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "note"
	}
}

// MsgLocation names the referrer a diagnostic is about, matching spec.md
// §7's requirement that resolution errors cite "the referrer and the
// unresolved identifier".
type MsgLocation struct {
	URI  string
	Name string
}

func (l *MsgLocation) String() string {
	if l == nil {
		return ""
	}
	if l.Name == "" {
		return l.URI
	}
	return fmt.Sprintf("%s (referenced from %s)", l.Name, l.URI)
}

type Msg struct {
	Kind     MsgKind
	Text     string
	Location *MsgLocation
}

func (m Msg) String() string {
	if m.Location != nil {
		return fmt.Sprintf("%s: %s: %s", m.Kind, m.Text, m.Location)
	}
	return fmt.Sprintf("%s: %s", m.Kind, m.Text)
}

// Log collects messages for a single build. It is not safe for concurrent
// use from multiple goroutines; funee's core pipeline never needs that.
type Log struct {
	msgs []Msg
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) AddError(loc *MsgLocation, text string) {
	l.msgs = append(l.msgs, Msg{Kind: Error, Text: text, Location: loc})
}

func (l *Log) AddWarning(loc *MsgLocation, text string) {
	l.msgs = append(l.msgs, Msg{Kind: Warning, Text: text, Location: loc})
}

func (l *Log) HasErrors() bool {
	for _, m := range l.msgs {
		if m.Kind == Error {
			return true
		}
	}
	return false
}

func (l *Log) Msgs() []Msg {
	return l.msgs
}

// SortedMsgs returns messages grouped errors-first, stable otherwise - the
// order a human reads a build failure report in.
func (l *Log) SortedMsgs() []Msg {
	out := make([]Msg, len(l.msgs))
	copy(out, l.msgs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// PrintToStderr renders every collected message, errors first, in the
// teacher's "kind: text" terminal style.
func (l *Log) PrintToStderr() {
	for _, m := range l.SortedMsgs() {
		fmt.Fprintln(os.Stderr, m.String())
	}
}
