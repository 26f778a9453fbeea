// Package catalog reads and writes item pools as versioned JSON files.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"

	"github.com/abhisek/adaptiq/internal/item"
	"github.com/abhisek/adaptiq/internal/topicgraph"
)

// CurrentFormatVersion is written by Write. Load accepts any version with
// the same major.
const CurrentFormatVersion = "v1.1.0"

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema://adaptiq/catalog.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// File is the on-disk catalog.
type File struct {
	FormatVersion string             `json:"format_version"`
	ExportedAt    *time.Time         `json:"exported_at,omitempty"`
	Topics        []topicgraph.Topic `json:"topics,omitempty"`
	Items         []item.Item        `json:"items"`
}

// ValidationError reports a catalog that is well-formed JSON but does not
// describe a valid item pool.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid catalog: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ErrUnsupportedVersion is wrapped when the format version has a different
// major than CurrentFormatVersion.
var ErrUnsupportedVersion = errors.New("unsupported format version")

// Load parses and validates a catalog. Items without a state get the
// initial state; persisted states are clamped into range.
func Load(r io.Reader) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	schema, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, &ValidationError{Err: err}
	}

	var f File
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := checkVersion(f.FormatVersion); err != nil {
		return nil, &ValidationError{Err: err}
	}
	if err := f.validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}

	for i := range f.Items {
		it := &f.Items[i]
		it.Format = item.ParseFormat(string(it.Format))
		it.State = it.State.OrDefault()
	}
	return &f, nil
}

// Write encodes topics and items as a catalog in the current format.
func Write(w io.Writer, topics []topicgraph.Topic, items []item.Item) error {
	now := time.Now().UTC()
	f := File{
		FormatVersion: CurrentFormatVersion,
		ExportedAt:    &now,
		Topics:        topics,
		Items:         items,
	}
	if f.Items == nil {
		f.Items = []item.Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// Graph builds the topic graph of the catalog. Topics referenced only by
// items are added without prerequisites.
func (f *File) Graph() (*topicgraph.Graph, error) {
	topics := append([]topicgraph.Topic(nil), f.Topics...)
	known := make(map[string]bool, len(topics))
	for _, t := range topics {
		known[t.ID] = true
	}
	for _, topic := range item.Topics(f.Items) {
		if !known[topic] {
			known[topic] = true
			topics = append(topics, topicgraph.Topic{ID: topic})
		}
	}
	return topicgraph.New(topics)
}

func (f *File) validate() error {
	var errs []string
	seen := make(map[string]bool, len(f.Items))
	for _, it := range f.Items {
		if seen[it.ID] {
			errs = append(errs, fmt.Sprintf("duplicate item ID: %q", it.ID))
		}
		seen[it.ID] = true

		if it.CorrectOption != "" && len(it.Options) > 0 && !hasOption(it, it.CorrectOption) {
			errs = append(errs, fmt.Sprintf("item %q: correct option %q is not one of its options", it.ID, it.CorrectOption))
		}
		if it.CorrectAttempts > it.TimesAttempted {
			errs = append(errs, fmt.Sprintf("item %q: more correct attempts than attempts", it.ID))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	if _, err := f.Graph(); err != nil {
		return err
	}
	return nil
}

func hasOption(it item.Item, key string) bool {
	for _, o := range it.Options {
		if strings.EqualFold(o.Key, key) {
			return true
		}
	}
	return false
}

// checkVersion accepts versions with or without the leading "v" as long as
// the major matches.
func checkVersion(v string) error {
	canon := v
	if !strings.HasPrefix(canon, "v") {
		canon = "v" + canon
	}
	if !semver.IsValid(canon) {
		return fmt.Errorf("format version %q is not a semantic version", v)
	}
	if semver.Major(canon) != semver.Major(CurrentFormatVersion) {
		return fmt.Errorf("%w: %s (want %s.x)", ErrUnsupportedVersion, v, semver.Major(CurrentFormatVersion))
	}
	if semver.Compare(canon, CurrentFormatVersion) > 0 {
		slog.Warn("catalog written by a newer format version", "version", v, "supported", CurrentFormatVersion)
	}
	return nil
}

// compiledSchema compiles the embedded schema once.
func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile catalog schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}
