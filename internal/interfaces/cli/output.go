package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// output escribe resultados en texto o JSON (una línea por objeto).
type output struct {
	format string
	w      io.Writer
}

// response formato JSON estándar de la CLI.
type response struct {
	Status string `json:"status"` // "ok" | "error"
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (o output) success(data any, text string) error {
	if o.format == "json" {
		return json.NewEncoder(o.w).Encode(response{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(o.w, text)
	return err
}

func (o output) failure(err error) error {
	if o.format == "json" {
		_ = json.NewEncoder(o.w).Encode(response{Status: "error", Error: err.Error()})
	}
	return err
}
