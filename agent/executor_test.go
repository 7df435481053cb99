package agent

import (
	"context"
	"testing"
)

func TestSplitFinalOutput(t *testing.T) {
	cases := []struct {
		name      string
		output    string
		want      string
		submitted bool
	}{
		{"current sentinel", "COMPLETE_TASK_AND_SUBMIT_FINAL_OUTPUT\nAnswer: 42", "Answer: 42", true},
		{"legacy sentinel", "MINI_SWE_AGENT_FINAL_OUTPUT\nAnswer: 42", "Answer: 42", true},
		{"empty remainder", "COMPLETE_TASK_AND_SUBMIT_FINAL_OUTPUT", "", true},
		{"trailing newline only", "COMPLETE_TASK_AND_SUBMIT_FINAL_OUTPUT\n", "", true},
		{"leading blank lines", "\n \nCOMPLETE_TASK_AND_SUBMIT_FINAL_OUTPUT\nresult", "result", true},
		{"sentinel with padding", "  COMPLETE_TASK_AND_SUBMIT_FINAL_OUTPUT  \nx", "x", true},
		{"terminators preserved", "COMPLETE_TASK_AND_SUBMIT_FINAL_OUTPUT\nline1\nline2\n", "line1\nline2\n", true},
		{"carriage return terminator", "COMPLETE_TASK_AND_SUBMIT_FINAL_OUTPUT\rAnswer: 42", "Answer: 42", true},
		{"crlf terminator", "COMPLETE_TASK_AND_SUBMIT_FINAL_OUTPUT\r\nAnswer: 42", "Answer: 42", true},
		{"form feed terminator", "COMPLETE_TASK_AND_SUBMIT_FINAL_OUTPUT\fx", "x", true},
		{"no sentinel", "a.txt\nb.txt", "", false},
		{"sentinel not on first line", "output\nCOMPLETE_TASK_AND_SUBMIT_FINAL_OUTPUT\nx", "", false},
		{"sentinel as substring", "COMPLETE_TASK_AND_SUBMIT_FINAL_OUTPUT extra words\nx", "", false},
		{"empty output", "", "", false},
		{"blank output", " \n\t\n", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := splitFinalOutput(tc.output)
			if ok != tc.submitted {
				t.Fatalf("submitted=%v, want %v", ok, tc.submitted)
			}
			if got != tc.want {
				t.Errorf("final output %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExecuteActionPassThrough(t *testing.T) {
	env := &mockEnv{steps: []execStep{
		{result: &ExecResult{Output: []byte("plain output\nsecond line"), ReturnCode: 3}},
	}}
	ag := New(&mockModel{}, env, nil)

	out, outcome, err := ag.executeAction(context.Background(), &Action{Command: "false"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Class != ClassContinue {
		t.Fatalf("expected Continue, got %+v", outcome)
	}
	if out.Output != "plain output\nsecond line" {
		t.Errorf("output changed: %q", out.Output)
	}
	if out.ReturnCode != 3 {
		t.Errorf("return code %d, want 3", out.ReturnCode)
	}
}

func TestExecuteActionSubmits(t *testing.T) {
	env := &mockEnv{steps: []execStep{
		{result: &ExecResult{Output: []byte("COMPLETE_TASK_AND_SUBMIT_FINAL_OUTPUT\nAnswer: 42")}},
	}}
	ag := New(&mockModel{}, env, nil)

	_, outcome, err := ag.executeAction(context.Background(), &Action{Command: "cat answer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Class != ClassTerminal || outcome.Kind != KindSubmitted {
		t.Fatalf("expected terminal Submitted, got %+v", outcome)
	}
	if outcome.Message != "Answer: 42" {
		t.Errorf("final output %q, want %q", outcome.Message, "Answer: 42")
	}
}

func TestExecuteActionCommandTimeout(t *testing.T) {
	env := &mockEnv{steps: []execStep{
		{err: &CommandTimeoutError{Command: "sleep 100", Partial: []byte("partial\xff")}},
	}}
	ag := New(&mockModel{}, env, nil)

	_, outcome, err := ag.executeAction(context.Background(), &Action{Command: "sleep 100"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Class != ClassRecoverable || outcome.Kind != KindExecutionTimeout {
		t.Fatalf("expected recoverable timeout, got %+v", outcome)
	}
}

func TestExecuteActionDeadlineExceeded(t *testing.T) {
	env := &mockEnv{steps: []execStep{{err: context.DeadlineExceeded}}}
	ag := New(&mockModel{}, env, nil)

	_, outcome, err := ag.executeAction(context.Background(), &Action{Command: "slow"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Class != ClassRecoverable || outcome.Kind != KindExecutionTimeout {
		t.Fatalf("expected recoverable timeout, got %+v", outcome)
	}
	// No partial output: the template's output slot renders empty.
	if outcome.Message == "" {
		t.Error("expected rendered timeout message")
	}
}

func TestExecuteActionBinaryOutputDecoded(t *testing.T) {
	env := &mockEnv{steps: []execStep{
		{result: &ExecResult{Output: []byte{0x68, 0x69, 0xff, 0xfe, 0x21}}},
	}}
	ag := New(&mockModel{}, env, nil, WithDetector(failingDetector{}))

	out, outcome, err := ag.executeAction(context.Background(), &Action{Command: "cat blob"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Class != ClassContinue {
		t.Fatalf("expected Continue, got %+v", outcome)
	}
	if out.Output != "hi��!" {
		t.Errorf("expected lossy decode, got %q", out.Output)
	}
}
