package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

type missingError struct{ name string }

func (e *missingError) Error() string { return "missing " + e.name }

func TestList_Empty(t *testing.T) {
	el := NewList("Resolution failed")

	if el.HasErrors() {
		t.Error("Expected empty list to have no errors")
	}
	if el.ErrorOrNil() != nil {
		t.Error("Expected ErrorOrNil to return nil for empty list")
	}
	if el.Format() != "" {
		t.Errorf("Expected empty report, got %q", el.Format())
	}

	var nilList *List
	if nilList.Len() != 0 {
		t.Error("Expected nil list to have length 0")
	}
}

func TestList_ErrorAndUnwrap(t *testing.T) {
	el := NewList("Resolution failed")
	el.Add(&missingError{name: "a"})
	el.Add(nil)
	el.Addf("value %q is invalid", "x")

	if el.Len() != 2 {
		t.Fatalf("Expected 2 errors, got %d", el.Len())
	}
	if el.Error() != `missing a; value "x" is invalid` {
		t.Errorf("Unexpected message: %s", el.Error())
	}

	err := fmt.Errorf("resolve: %w", el.ErrorOrNil())
	var target *missingError
	if !stderrors.As(err, &target) || target.name != "a" {
		t.Error("Expected errors.As to find the collected error through the list")
	}
}

func TestList_AddFlattensLists(t *testing.T) {
	inner := NewList("inner")
	inner.Add(&missingError{name: "a"})
	inner.Add(&missingError{name: "b"})

	outer := NewList("outer")
	outer.Add(inner)
	outer.Add(&missingError{name: "c"})

	if outer.Len() != 3 {
		t.Errorf("Expected 3 errors after flattening, got %d", outer.Len())
	}
}

func TestList_FormatCapsOutput(t *testing.T) {
	el := NewList("Schema errors")
	for i := 0; i < 5; i++ {
		el.Add(&missingError{name: fmt.Sprintf("p%d", i)})
	}

	report := el.FormatN(3)
	if !strings.Contains(report, "showing first 3 of 5") {
		t.Errorf("Expected capped header, got:\n%s", report)
	}
	if !strings.Contains(report, "missing p2") || strings.Contains(report, "missing p3") {
		t.Errorf("Expected only the first three errors, got:\n%s", report)
	}
	if !strings.Contains(report, "2 additional errors not shown") {
		t.Errorf("Expected trailing note, got:\n%s", report)
	}

	full := el.Format()
	if !strings.Contains(full, "Schema errors (5):") {
		t.Errorf("Expected full header, got:\n%s", full)
	}
}
