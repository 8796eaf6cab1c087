package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formula/pkg/controller"
	"github.com/goliatone/go-formula/pkg/formula"
	"github.com/goliatone/go-formula/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	infoMessages []string
	prompts      []string
	inputPos     int
	selectPos    int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func newSession(t *testing.T, driver PromptDriver, options ...Option) *Session {
	t.Helper()
	session, err := New(append([]Option{WithPromptDriver(driver)}, options...)...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

func newController(t *testing.T, source string, options ...formula.Option) *controller.Controller {
	t.Helper()
	c, err := controller.New(testsupport.MustBuild(t, source, options...))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c
}

func TestSession_AddRowThroughDialog(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{"Ada", "ada@example.com", "2"},
		// Add Computers, brand ACME, then Done once two rows exist.
		selectIdx: []int{1, 0, 5},
		confirm:   []bool{true},
	}
	c := newController(t, testsupport.PersonFormula)

	out, err := newSession(t, driver).Run(testsupport.Context(), c)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal output: %v\n%s", err, out)
	}
	want := map[string]any{
		"person": map[string]any{
			"name":  "Ada",
			"email": "ada@example.com",
			"computers": []any{
				map[string]any{"brand": "Dell", "disks": float64(1)},
				map[string]any{"brand": "ACME", "disks": float64(2)},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) == 0 || driver.infoMessages[0] != "Person" {
		t.Fatalf("expected a section header, got %v", driver.infoMessages)
	}
}

func TestSession_RetriesRejectedAnswers(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{"", "not-an-email", "ok@example.com", "4"},
		// Remove Computers #1, Edit Computers #1, brand Lenovo, Done.
		selectIdx: []int{3, 0, 3, 2},
	}
	c := newController(t, testsupport.PersonFormula, formula.WithInitialRows(2))

	if _, err := newSession(t, driver, WithOutputFormat(OutputFormatYAML)).Run(testsupport.Context(), c); err != nil {
		t.Fatalf("run: %v", err)
	}

	var rejected bool
	for _, msg := range driver.infoMessages {
		if strings.Contains(msg, "not an email address") {
			rejected = true
		}
	}
	if !rejected {
		t.Fatalf("expected a rejection message, got %v", driver.infoMessages)
	}

	checks := map[string]any{
		"person.email":             "ok@example.com",
		"person.computers.0.brand": "Lenovo",
		"person.computers.0.disks": 4,
	}
	for path, want := range checks {
		got, err := c.Get(path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		if got != want {
			t.Fatalf("%s = %v, want %v", path, got, want)
		}
	}
	values := c.Values()["person"].(map[string]any)["computers"].([]any)
	if len(values) != 1 {
		t.Fatalf("expected one row after removal, got %d", len(values))
	}
}

func TestSession_SkipsHiddenAndDisabledFields(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{0},
	}
	c := newController(t, `
mode:
  $values: [basic, advanced]
level:
  $type: number
  $visibleIf: mode == advanced
id:
  $disabled: true
  $default: fixed
`)

	out, err := newSession(t, driver, WithOutputFormat(OutputFormatPrettyText)).Run(testsupport.Context(), c)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"Mode"}, driver.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Id: fixed"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if got := string(out); got != "id=fixed\nlevel=0\nmode=basic\n" {
		t.Fatalf("unexpected pretty output %q", got)
	}
}

func TestSession_DiscardedDraft(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada", "", "9"},
		selectIdx: []int{1, 2, 2},
		confirm:   []bool{false},
	}
	c := newController(t, testsupport.PersonFormula)

	if _, err := newSession(t, driver).Run(testsupport.Context(), c); err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.Editing() {
		t.Fatalf("dialog left open")
	}
	rows := c.Values()["person"].(map[string]any)["computers"].([]any)
	if len(rows) != 1 {
		t.Fatalf("discarded draft was committed: %d rows", len(rows))
	}
}

func TestSession_AbortStopsTheRun(t *testing.T) {
	driver := &abortingDriver{stubDriver: &stubDriver{}}
	c := newController(t, testsupport.PersonFormula)

	if _, err := newSession(t, driver).Run(testsupport.Context(), c); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

type abortingDriver struct {
	*stubDriver
}

func (abortingDriver) Input(context.Context, InputConfig) (string, error) {
	return "", ErrAborted
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, err := New(WithPromptDriver(&stubDriver{}), WithOutputFormat("xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
