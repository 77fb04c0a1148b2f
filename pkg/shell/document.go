package shell

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	platformerrors "github.com/jmgilman/go/errors"
)

// DefaultMaxDocumentBytes is the serialized size ceiling used when none is
// configured.
const DefaultMaxDocumentBytes = 4096

// Document is a JSON object held in memory. Key order is kept as read so a
// patched file differs from the original only in the field that changed.
type Document struct {
	keys   []string
	fields map[string]json.RawMessage
}

func NewDocument() *Document {
	return &Document{fields: make(map[string]json.RawMessage)}
}

// ParseDocument decodes a top level JSON object.
func ParseDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, found %v", tok)
	}

	doc := NewDocument()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, found %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		doc.put(key, raw)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after the closing brace")
	}

	return doc, nil
}

func (d *Document) put(key string, raw json.RawMessage) {
	if _, ok := d.fields[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.fields[key] = raw
}

// Set stores value as a JSON string under key, appending the key if new.
func (d *Document) Set(key, value string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return err
	}

	d.put(key, bytes.TrimRight(buf.Bytes(), "\n"))
	return nil
}

// Get returns the raw JSON stored under key.
func (d *Document) Get(key string) (json.RawMessage, bool) {
	raw, ok := d.fields[key]
	return raw, ok
}

// GetString returns the decoded string stored under key, if it is one.
func (d *Document) GetString(key string) (string, bool) {
	raw, ok := d.fields[key]
	if !ok {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

func (d *Document) Len() int {
	return len(d.keys)
}

// MarshalIndent renders the document with two space indentation.
func (d *Document) MarshalIndent() ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			compact.WriteByte(',')
		}

		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		compact.Write(name)
		compact.WriteByte(':')
		compact.Write(d.fields[key])
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Patcher edits single fields of JSON documents kept in a FileStore.
type Patcher struct {
	store    FileStore
	maxBytes int64
	atomic   bool
}

type PatcherOption func(*Patcher)

// WithAtomicWrites makes the patcher write to a sibling temp file and rename
// it over the original instead of overwriting in place.
func WithAtomicWrites(enabled bool) PatcherOption {
	return func(p *Patcher) { p.atomic = enabled }
}

func NewPatcher(store FileStore, maxBytes int64, opts ...PatcherOption) *Patcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDocumentBytes
	}

	p := &Patcher{store: store, maxBytes: maxBytes}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Patcher) MaxBytes() int64 {
	return p.maxBytes
}

// Load reads and parses the document at path, enforcing the size ceiling
// before anything is parsed.
func (p *Patcher) Load(path string) (*Document, error) {
	if p.store.IsDir(path) {
		return nil, platformerrors.New(CodeNotFound, "Failed to open JSON file for reading.")
	}

	size, err := p.store.Size(path)
	if err != nil {
		return nil, platformerrors.Wrap(err, CodeNotFound, "Failed to open JSON file for reading.")
	}
	if size > p.maxBytes {
		return nil, platformerrors.Newf(CodeTooLarge, "JSON file is %d bytes, the limit is %d.", size, p.maxBytes)
	}

	f, err := p.store.Open(path)
	if err != nil {
		return nil, platformerrors.Wrap(err, CodeNotFound, "Failed to open JSON file for reading.")
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, p.maxBytes+1))
	if err != nil {
		return nil, platformerrors.Wrap(err, CodeNotFound, "Failed to read JSON file.")
	}
	if int64(len(data)) > p.maxBytes {
		return nil, platformerrors.Newf(CodeTooLarge, "JSON file exceeds the limit of %d bytes.", p.maxBytes)
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, platformerrors.Wrapf(err, CodeCorrupt, "Failed to parse JSON (possibly corrupt or invalid file): %v", err)
	}

	return doc, nil
}

// Save serializes doc and writes it to path. The file is only touched once
// the serialized form is known to fit.
func (p *Patcher) Save(path string, doc *Document) error {
	data, err := doc.MarshalIndent()
	if err != nil {
		return platformerrors.Wrap(err, CodeWriteFailed, "Failed to serialize JSON.")
	}
	if int64(len(data)) > p.maxBytes {
		return platformerrors.Newf(CodeTooLarge, "Updated JSON would be %d bytes, the limit is %d.", len(data), p.maxBytes)
	}

	target := path
	if p.atomic {
		target = path + ".tmp"
	}

	if err := p.write(target, data); err != nil {
		if p.atomic {
			_ = p.store.Remove(target)
		}
		return err
	}

	if p.atomic {
		if err := p.store.Rename(target, path); err != nil {
			_ = p.store.Remove(target)
			return platformerrors.Wrap(err, CodeWriteFailed, "Failed to replace JSON file.")
		}
	}

	return nil
}

func (p *Patcher) write(path string, data []byte) error {
	f, err := p.store.Create(path)
	if err != nil {
		return platformerrors.Wrap(err, CodeWriteFailed, "Failed to open JSON file for writing.")
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return platformerrors.Wrap(err, CodeWriteFailed, "Failed to write JSON file.")
	}

	if err := f.Close(); err != nil {
		return platformerrors.Wrap(err, CodeWriteFailed, "Failed to write JSON file.")
	}

	return nil
}

// SetField loads the document at path, sets key to value and writes it back.
func (p *Patcher) SetField(path, key, value string) error {
	doc, err := p.Load(path)
	if err != nil {
		return err
	}

	if err := doc.Set(key, value); err != nil {
		return platformerrors.Wrap(err, CodeWriteFailed, "Failed to serialize JSON.")
	}

	return p.Save(path, doc)
}
