package test_helper

import (
	"testing"

	"desmosc/source/settings"
	"desmosc/source/text"
)

// Auxiliary types and functions for testing the parser and compiler.

type TestItem struct {
	Input string
	Want  string
}

// Runs each input through F and compares the result with what we want. F returns an error if
// the input didn't compile, in which case we show the input in red before comparing, since some
// tests want the error message.
func RunTest(t *testing.T, tests []TestItem, F func(s string) (string, error)) {
	t.Helper()
	for _, test := range tests {
		if settings.SHOW_TESTS {
			println(text.BULLET + "Running test " + text.Emph(test.Input))
		}
		got, e := F(test.Input)
		if e != nil && settings.SHOW_TESTS {
			println(text.Red(test.Input))
			println("There were errors compiling the line: \n" + e.Error() + "\n")
		}
		if !(test.Want == got) {
			t.Fatalf(`Test failed with input %s | Wanted : %s | Got : %s.`, test.Input, test.Want, got)
		}
	}
}
