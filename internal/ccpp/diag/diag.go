// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package diag defines the raw diagnostic contract the preprocessor core
// emits: {level, main subdiagnostic, note subdiagnostics}, each
// subdiagnostic an optional primary/labeled range plus an optional
// insertion/replacement suggestion. Rendering to human-readable text is
// provided as a default implementation, not a requirement -- an external
// front end is free to resolve the raw form differently.
package diag

import (
	"fmt"

	"github.com/EngFlow/ccpp/internal/ccpp/source"
)

// Level orders diagnostics by severity.
type Level int

const (
	Note Level = iota
	Warning
	Error
	Fatal
)

func (l Level) String() string {
	switch l {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal error"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Suggestion proposes replacing Replacement with Insert; a zero-length
// Replacement models pure insertion.
type Suggestion struct {
	Replacement source.FragmentedRange
	Insert      string
}

// LabeledRange is a secondary range called out within a subdiagnostic,
// alongside a short label describing its relevance.
type LabeledRange struct {
	Range source.FragmentedRange
	Label string
}

// Subdiagnostic is one message within a Diagnostic, optionally anchored to a
// primary range and zero or more labeled secondary ranges, and optionally
// carrying a fix-it suggestion.
type Subdiagnostic struct {
	Message    string
	Primary    *source.FragmentedRange
	Labeled    []LabeledRange
	Suggestion *Suggestion
}

// Diagnostic is the unit the core hands to an external renderer: a severity,
// one main subdiagnostic, and zero or more note subdiagnostics that add
// context (e.g. "previous definition is here").
type Diagnostic struct {
	Level Level
	Main  Subdiagnostic
	Notes []Subdiagnostic
}

func frag(r source.Range) *source.FragmentedRange {
	f := source.FragmentedRange{Start: r.Start, End: r.End()}
	return &f
}

// At is a convenience constructor for a Subdiagnostic with a primary range
// and no suggestion.
func At(r source.Range, format string, args ...any) Subdiagnostic {
	return Subdiagnostic{Message: fmt.Sprintf(format, args...), Primary: frag(r)}
}

// WithSuggestion attaches a fix-it suggestion to an existing Subdiagnostic.
func (s Subdiagnostic) WithSuggestion(r source.Range, insert string) Subdiagnostic {
	f := source.FragmentedRange{Start: r.Start, End: r.End()}
	s.Suggestion = &Suggestion{Replacement: f, Insert: insert}
	return s
}

// WithLabel appends a labeled secondary range to an existing Subdiagnostic.
func (s Subdiagnostic) WithLabel(r source.Range, label string) Subdiagnostic {
	s.Labeled = append(s.Labeled, LabeledRange{Range: source.FragmentedRange{Start: r.Start, End: r.End()}, Label: label})
	return s
}

// Sink accumulates diagnostics emitted while processing one translation
// unit. It is single-owner mutable, matching the rest of the core's
// concurrency model (§5): no synchronization is provided or needed.
type Sink struct {
	diags []Diagnostic
	fatal bool
}

// NewSink returns an empty Sink.
func NewSink() *Sink { return &Sink{} }

// Emit records d. Emitting a Fatal diagnostic latches HasFatal(); callers
// that may emit Fatal must check it and unwind, matching the "distinguished
// failure value" propagation policy of §7.
func (s *Sink) Emit(d Diagnostic) {
	s.diags = append(s.diags, d)
	if d.Level == Fatal {
		s.fatal = true
	}
}

// Notef emits a diagnostic at the given level with main as its Main
// subdiagnostic and the supplied note subdiagnostics attached.
func (s *Sink) Notef(level Level, main Subdiagnostic, notes ...Subdiagnostic) {
	s.Emit(Diagnostic{Level: level, Main: main, Notes: notes})
}

// Errorf emits a plain error with no notes.
func (s *Sink) Errorf(r source.Range, format string, args ...any) {
	s.Emit(Diagnostic{Level: Error, Main: At(r, format, args...)})
}

// Warnf emits a plain warning with no notes.
func (s *Sink) Warnf(r source.Range, format string, args ...any) {
	s.Emit(Diagnostic{Level: Warning, Main: At(r, format, args...)})
}

// Fatalf emits a fatal diagnostic with no notes, latching HasFatal().
func (s *Sink) Fatalf(r source.Range, format string, args ...any) {
	s.Emit(Diagnostic{Level: Fatal, Main: At(r, format, args...)})
}

// HasFatal reports whether any Fatal diagnostic has been emitted.
func (s *Sink) HasFatal() bool { return s.fatal }

// HasError reports whether any Error or Fatal diagnostic has been emitted --
// the driver's exit-code contract (§6: "Exit code ... 1 if any error or
// fatal diagnostic was emitted").
func (s *Sink) HasError() bool {
	for _, d := range s.diags {
		if d.Level == Error || d.Level == Fatal {
			return true
		}
	}
	return false
}

// Diagnostics returns every diagnostic emitted so far, oldest first.
func (s *Sink) Diagnostics() []Diagnostic { return s.diags }
