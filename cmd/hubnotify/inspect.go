package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/Fullex26/hubnotify/pkg/models"
)

const previewWidth = 48

// payloadField is one top-level member of the event payload
type payloadField struct {
	Key     string
	Kind    string
	Size    int
	Preview string
}

// payloadFields lists top-level members in document order. A payload that is
// not an object yields a single "(root)" field.
func payloadFields(raw json.RawMessage) ([]payloadField, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return []payloadField{newPayloadField("(root)", trimmed)}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var fields []payloadField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		fields = append(fields, newPayloadField(key, value))
	}
	return fields, nil
}

func newPayloadField(key string, value json.RawMessage) payloadField {
	return payloadField{
		Key:     key,
		Kind:    jsonKind(value),
		Size:    len(value),
		Preview: preview(value),
	}
}

func jsonKind(v json.RawMessage) string {
	if len(v) == 0 {
		return "empty"
	}
	switch v[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	}
	return "number"
}

func preview(v json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		buf.Reset()
		buf.Write(v)
	}
	s := buf.String()
	if r := []rune(s); len(r) > previewWidth {
		s = string(r[:previewWidth-1]) + "…"
	}
	return s
}

// renderInspect writes the run context and a table of payload fields. Without
// a terminal the table is written as CSV.
func renderInspect(w io.Writer, ctx models.EventContext, raw json.RawMessage, colorize bool) error {
	fields, err := payloadFields(raw)
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}

	event := ctx.EventName
	if event == "" {
		event = "(no event name)"
	}
	header := fmt.Sprintf("%s · %s · %d fields", event, humanize.Bytes(uint64(len(raw))), len(fields))
	if colorize {
		header = text.Bold.Sprint(header)
	}
	fmt.Fprintln(w, header)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Key", "Type", "Size", "Preview"})
	for _, f := range fields {
		tw.AppendRow(table.Row{f.Key, f.Kind, humanize.Bytes(uint64(f.Size)), f.Preview})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	if colorize {
		fmt.Fprintln(w, tw.Render())
	} else {
		fmt.Fprintln(w, tw.RenderCSV())
	}
	if u := ctx.RunURL(); u != "" {
		fmt.Fprintf(w, "run: %s\n", u)
	}
	return nil
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
