package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formula/pkg/collection"
	"github.com/goliatone/go-formula/pkg/controller"
	"github.com/goliatone/go-formula/pkg/formula"
	"github.com/goliatone/go-formula/pkg/render"
)

// Session walks a form in the terminal, one prompt per visible field, and
// turns every answer into a controller action.
type Session struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	logger       zerolog.Logger
}

// New constructs a Session. Without a prompt driver the survey-backed
// terminal driver is used.
func New(options ...Option) (*Session, error) {
	s := &Session{
		outputFormat: OutputFormatJSON,
		logger:       zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	switch s.outputFormat {
	case OutputFormatJSON, OutputFormatYAML, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, s.outputFormat)
	}
	return s, nil
}

// Run prompts for every top-level element in declaration order and returns
// the final state serialized in the configured output format.
func (s *Session) Run(ctx context.Context, c *controller.Controller) ([]byte, error) {
	if c == nil {
		return nil, errors.New("tui: controller is required")
	}
	for _, child := range c.RenderRoot().Children {
		if err := s.promptPath(ctx, c, child.Path); err != nil {
			return nil, err
		}
	}
	return s.serialize(c.Values())
}

// promptPath re-renders path before prompting so visibility reflects every
// answer given so far.
func (s *Session) promptPath(ctx context.Context, c *controller.Controller, path string) error {
	node, err := c.Render(path)
	if err != nil {
		return err
	}
	if !node.Visible {
		return nil
	}

	switch {
	case node.IsLeaf():
		return s.promptField(ctx, c, node, func(answer string) error {
			return c.Update(ctx, node.Path, answer)
		})
	case node.Kind == formula.KindCollection:
		return s.promptCollection(ctx, c, node.Path)
	default:
		if err := s.section(ctx, node); err != nil {
			return err
		}
		for _, child := range node.Children {
			if err := s.promptPath(ctx, c, child.Path); err != nil {
				return err
			}
		}
		return nil
	}
}

func (s *Session) promptField(ctx context.Context, c *controller.Controller, node render.Node, commit func(string) error) error {
	if node.Disabled {
		return s.driver.Info(ctx, fmt.Sprintf("%s%s: %v", s.theme.InfoPrefix, displayLabel(node), node.Value))
	}

	var validate func(string) error
	if el, err := c.Form().Lookup(formula.ParsePath(node.Path)); err == nil {
		validate = func(answer string) error {
			_, err := el.Coerce(answer)
			return err
		}
	}

	for {
		answer, err := s.ask(ctx, node, validate)
		if err != nil {
			return err
		}
		err = commit(answer)
		if err == nil {
			return nil
		}
		if !errors.Is(err, formula.ErrInvalidValue) {
			return err
		}
		s.logger.Debug().Err(err).Str("path", node.Path).Msg("answer rejected")
		if err := s.driver.Info(ctx, s.theme.ErrorPrefix+err.Error()); err != nil {
			return err
		}
	}
}

func (s *Session) ask(ctx context.Context, node render.Node, validate func(string) error) (string, error) {
	current := fmt.Sprint(node.Value)
	if node.Kind == formula.KindSelect {
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      displayLabel(node),
			Options:      node.Options,
			DefaultIndex: indexOf(node.Options, current),
			Help:         node.Help,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(node.Options) {
			return current, nil
		}
		return node.Options[idx], nil
	}
	return s.driver.Input(ctx, InputConfig{
		Message:   displayLabel(node),
		Default:   current,
		Help:      displayHelp(node),
		Validator: validate,
	})
}

type menuAction int

const (
	actionDone menuAction = iota
	actionEdit
	actionAdd
	actionRemove
)

type menuEntry struct {
	label  string
	action menuAction
	index  int
}

func collectionMenu(node render.Node) []menuEntry {
	var entries []menuEntry
	for i := range node.Rows {
		entries = append(entries, menuEntry{label: "Edit " + rowTitle(node.Label, i), action: actionEdit, index: i})
	}
	if node.CanAdd {
		entries = append(entries, menuEntry{label: "Add " + node.Label, action: actionAdd})
	}
	if node.CanRemove {
		for i := range node.Rows {
			entries = append(entries, menuEntry{label: "Remove " + rowTitle(node.Label, i), action: actionRemove, index: i})
		}
	}
	return append(entries, menuEntry{label: "Done", action: actionDone})
}

func (s *Session) promptCollection(ctx context.Context, c *controller.Controller, path string) error {
	for {
		node, err := c.Render(path)
		if err != nil {
			return err
		}
		entries := collectionMenu(node)
		labels := make([]string, len(entries))
		for i, entry := range entries {
			labels[i] = entry.label
		}
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      fmt.Sprintf("%s (%d rows)", displayLabel(node), len(node.Rows)),
			Options:      labels,
			DefaultIndex: len(labels) - 1,
			Help:         node.Help,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(entries) {
			return nil
		}

		entry := entries[idx]
		switch entry.action {
		case actionDone:
			return nil
		case actionEdit:
			err = s.promptPath(ctx, c, node.Rows[entry.index].Path)
		case actionAdd:
			err = s.addRow(ctx, c, node)
		case actionRemove:
			err = c.RemoveRow(ctx, path, entry.index)
		}
		if err == nil {
			continue
		}
		if !isBoundsErr(err) {
			return err
		}
		if err := s.driver.Info(ctx, s.theme.ErrorPrefix+err.Error()); err != nil {
			return err
		}
	}
}

// addRow drafts a new row in a dialog and commits it on confirmation.
// Nested collections of the draft keep their initial rows; they can be
// edited once the row exists.
func (s *Session) addRow(ctx context.Context, c *controller.Controller, col render.Node) error {
	draft, err := c.OpenCollectionEditor(ctx, col.Path)
	if err != nil {
		return err
	}
	if err := s.promptDraft(ctx, c, draft); err != nil {
		_ = c.Cancel(ctx)
		return err
	}
	ok, err := s.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Add %s?", rowTitle(col.Label, len(col.Rows))),
		Default: true,
	})
	if err != nil {
		_ = c.Cancel(ctx)
		return err
	}
	if !ok {
		s.logger.Debug().Str("path", col.Path).Msg("row discarded")
		return c.Cancel(ctx)
	}
	return c.Accept(ctx)
}

func (s *Session) promptDraft(ctx context.Context, c *controller.Controller, draft render.Node) error {
	var leaves []string
	draft.Walk(func(n render.Node) bool {
		if n.Kind == formula.KindCollection {
			return false
		}
		if n.IsLeaf() {
			leaves = append(leaves, n.Path)
		}
		return true
	})

	prefix := draft.Path + "."
	for _, path := range leaves {
		dialog := c.View().Dialog
		if dialog == nil {
			return controller.ErrNoEditor
		}
		node, ok := dialog.Node.Find(path)
		if !ok || !node.Visible {
			continue
		}
		rel := strings.TrimPrefix(path, prefix)
		err := s.promptField(ctx, c, node, func(answer string) error {
			return c.SetDraft(ctx, rel, answer)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) section(ctx context.Context, node render.Node) error {
	title := node.Label
	if node.Kind == formula.KindRow {
		if idx, ok := formula.ParseIndex(formula.ParsePath(node.Path).Last()); ok {
			title = rowTitle(node.Label, idx)
		}
	}
	if title == "" {
		return nil
	}
	return s.driver.Info(ctx, s.theme.SectionPrefix+title)
}

func isBoundsErr(err error) bool {
	return errors.Is(err, collection.ErrMaxItems) ||
		errors.Is(err, collection.ErrMinItems) ||
		errors.Is(err, collection.ErrIndexOutOfRange)
}

func rowTitle(label string, index int) string {
	return fmt.Sprintf("%s #%d", label, index+1)
}

func displayLabel(node render.Node) string {
	if node.Label != "" {
		return node.Label
	}
	return node.Name
}

func displayHelp(node render.Node) string {
	if node.Help != "" {
		return node.Help
	}
	return node.Placeholder
}
