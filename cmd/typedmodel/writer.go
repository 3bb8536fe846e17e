/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"encoding/json"
	"io"

	"github.com/suparena/typedmodel/record"
	"gopkg.in/yaml.v3"
)

type recordWriter interface {
	Write(r record.Record) error
	Close() error
}

func newWriter(format string, w io.Writer) recordWriter {
	if format == "yaml" {
		return &yamlWriter{enc: yaml.NewEncoder(w)}
	}
	return &jsonWriter{enc: json.NewEncoder(w)}
}

// jsonWriter writes one JSON record per line.
type jsonWriter struct {
	enc *json.Encoder
}

func (w *jsonWriter) Write(r record.Record) error {
	return w.enc.Encode(r)
}

func (w *jsonWriter) Close() error {
	return nil
}

// yamlWriter writes one YAML document per record. Payloads go through their JSON
// form first so field names match the wire format.
type yamlWriter struct {
	enc *yaml.Encoder
}

func (w *yamlWriter) Write(r record.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return w.enc.Encode(doc)
}

func (w *yamlWriter) Close() error {
	return w.enc.Close()
}
