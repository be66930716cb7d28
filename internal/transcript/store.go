package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrNotFound      = errors.New("transcript not found")
	ErrMalformedData = errors.New("malformed transcript data")
	ErrIO            = errors.New("transcript io error")
)

// persisted layout, compatible with whisper's JSON output
type record struct {
	Language string          `json:"language,omitempty"`
	Text     string          `json:"text,omitempty"`
	Segments []recordSegment `json:"segments"`
}

type recordSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Load reads a persisted transcript record.
func Load(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrIO, path, err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse maps a record onto a Transcript. A record without a segment list
// yields an empty transcript rather than an error.
func Parse(data []byte) (*Transcript, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedData)
	}

	root := gjson.ParseBytes(data)
	opts := []Option{
		WithLanguage(root.Get("language").String()),
		WithText(strings.TrimSpace(root.Get("text").String())),
	}

	list := root.Get("segments")
	if !list.IsArray() {
		return New(nil, opts...), nil
	}

	items := list.Array()
	segments := make([]Segment, 0, len(items))
	for i, item := range items {
		seg, err := parseSegment(item)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		segments = append(segments, seg)
	}

	return New(segments, opts...), nil
}

func parseSegment(item gjson.Result) (Segment, error) {
	if !item.IsObject() {
		return Segment{}, fmt.Errorf("%w: segment is not an object", ErrMalformedData)
	}

	start, err := seconds(item.Get("start"), "start")
	if err != nil {
		return Segment{}, err
	}
	end, err := seconds(item.Get("end"), "end")
	if err != nil {
		return Segment{}, err
	}

	text := item.Get("text")
	switch text.Type {
	case gjson.String, gjson.Null:
	default:
		return Segment{}, fmt.Errorf("%w: text is %s, not a string", ErrMalformedData, text.Type)
	}

	return Segment{Start: start, End: end, Text: text.Str}, nil
}

// seconds accepts JSON numbers of any shape and numeric strings.
func seconds(r gjson.Result, field string) (float64, error) {
	switch r.Type {
	case gjson.Number:
		return r.Num, nil
	case gjson.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q is not numeric", ErrMalformedData, field, r.Str)
		}
		return v, nil
	default:
		if !r.Exists() {
			return 0, fmt.Errorf("%w: missing %s", ErrMalformedData, field)
		}
		return 0, fmt.Errorf("%w: %s is %s, not a number", ErrMalformedData, field, r.Type)
	}
}

// Marshal encodes the record as indented UTF-8 JSON without escaping
// non-ASCII or HTML characters.
func Marshal(t *Transcript) ([]byte, error) {
	if t == nil {
		t = New(nil)
	}
	rec := record{
		Language: t.Language(),
		Text:     t.text,
		Segments: make([]recordSegment, 0, t.Len()),
	}
	for i, seg := range t.All() {
		rec.Segments = append(rec.Segments, recordSegment{
			ID:    i,
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("failed to encode transcript: %w", err)
	}
	return buf.Bytes(), nil
}

// Write persists t at path, creating the parent directory.
func Write(path string, t *Transcript) (err error) {
	data, err := Marshal(t)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrIO, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", ErrIO, path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close %s: %v", ErrIO, path, cerr)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", ErrIO, path, err)
	}
	return nil
}
