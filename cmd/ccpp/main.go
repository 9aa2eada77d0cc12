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

// Command ccpp is a smoke-test harness for the preprocessor core: it prints
// the fully directive-interpreted, macro-expanded token stream of one C
// source file, then writes the accumulated diagnostics to stderr. It is not a production
// driver; its rendering is only good enough to eyeball whether the core is
// doing the right thing (§6).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/EngFlow/ccpp/internal/ccpp/diag"
	"github.com/EngFlow/ccpp/internal/ccpp/engine"
	"github.com/EngFlow/ccpp/internal/ccpp/fileprovider"
	"github.com/EngFlow/ccpp/internal/ccpp/intern"
	"github.com/EngFlow/ccpp/internal/ccpp/source"
	"github.com/EngFlow/ccpp/internal/ccpp/token"
)

type includeDirs struct{ values []string }

func (d *includeDirs) String() string { return strings.Join(d.values, ",") }

func (d *includeDirs) Set(value string) error {
	d.values = append(d.values, value)
	return nil
}

func main() {
	var systemDirs includeDirs
	parentDir := flag.String("parent-dir", "", "presumed parent directory of the main file, for \"...\" resolution")
	flag.Var(&systemDirs, "I", "system include directory (repeatable, searched in order)")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		log.Fatal("ccpp requires exactly one argument: the path to the main source file")
	}
	mainPath := flag.Arg(0)

	raw, err := os.ReadFile(mainPath)
	if err != nil {
		log.Fatalf("reading %s: %v", mainPath, err)
	}

	sm := source.NewMap()
	in := intern.New()
	sink := diag.NewSink()

	mainID, err := sm.CreateFile(mainPath, source.NewFileContents(string(raw)), nil)
	if err != nil {
		log.Fatalf("registering %s: %v", mainPath, err)
	}

	loader := fileprovider.NewLoader(fileprovider.OSProvider{}, systemDirs.values)
	eng := engine.New(sm, in, sink, loader, mainID, *parentDir)

	render(os.Stdout, eng, sm, in)
	renderDiagnostics(os.Stderr, sink, sm)

	if sink.HasError() {
		os.Exit(1)
	}
}

// render prints the token stream, reproducing the original layout from each
// token's LineStart/LeadingTrivia bits as specified in §6: a newline and
// re-indentation to the token's spelled column when LineStart is true, a
// single space when LeadingTrivia is true, nothing otherwise.
func render(w *os.File, eng *engine.Engine, sm *source.Map, in *intern.StringInterner) {
	for {
		tok, ok := eng.Next()
		if !ok {
			return
		}
		if tok.Kind == token.KindEOF {
			fmt.Fprintln(w)
			return
		}
		switch {
		case tok.LineStart:
			fmt.Fprintln(w)
			fmt.Fprint(w, strings.Repeat(" ", spelledColumn(sm, tok.Range.Start)))
		case tok.LeadingTrivia:
			fmt.Fprint(w, " ")
		}
		fmt.Fprint(w, token.DisplayForm(tok, in))
	}
}

// spelledColumn walks pos up its spelling chain to the file that ultimately
// spelled it and returns its 0-based column there.
func spelledColumn(sm *source.Map, pos source.Position) int {
	for {
		if next, ok := sm.SpellingPos(pos); ok {
			pos = next
			continue
		}
		break
	}
	interp, ok := sm.Interpret(source.Range{Start: pos})
	if !ok {
		return 0
	}
	return interp.StartCol - 1
}

// renderDiagnostics writes a clang-style "file:line:col: level: message" line
// per diagnostic (plus one per note), via diag.RenderText.
func renderDiagnostics(w *os.File, sink *diag.Sink, sm *source.Map) {
	for _, d := range sink.Diagnostics() {
		fmt.Fprintln(w, diag.RenderText(sm, d))
	}
}
