package domain

import (
	"encoding/json"
	"testing"
)

func TestFlexBoolAcceptsLooseEncodings(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		`true`:   true,
		`false`:  false,
		`null`:   false,
		`1`:      true,
		`0`:      false,
		`"yes"`:  true,
		`"No"`:   false,
		`"true"`: true,
		`""`:     false,
		`" Y "`:  true,
	}
	for input, want := range cases {
		var got FlexBool
		if err := json.Unmarshal([]byte(input), &got); err != nil {
			t.Fatalf("unmarshal %s failed: %v", input, err)
		}
		if bool(got) != want {
			t.Fatalf("unmarshal %s: expected %t, got %t", input, want, bool(got))
		}
	}
}

func TestFlexBoolRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, input := range []string{`"maybe"`, `[]`, `{}`} {
		var got FlexBool
		if err := json.Unmarshal([]byte(input), &got); err == nil {
			t.Fatalf("expected error for %s", input)
		}
	}
}

func TestSummaryResultVariants(t *testing.T) {
	t.Parallel()

	ok := SummaryOf(CallSummary{Status: "completed"})
	if ok.IsError() || ok.Summary.Status != "completed" {
		t.Fatalf("unexpected summary result: %+v", ok)
	}

	failed := SummaryError("")
	if !failed.IsError() || failed.Err != "Unknown error" {
		t.Fatalf("unexpected error result: %+v", failed)
	}
}
