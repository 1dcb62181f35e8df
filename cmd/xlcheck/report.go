package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/javajack/xlrule/ruleset"
)

type reportFormat string

const (
	formatText reportFormat = "text"
	formatJSON reportFormat = "json"
	formatYAML reportFormat = "yaml"
)

func parseFormat(s string) (reportFormat, error) {
	switch f := reportFormat(s); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format: %q", s)
	}
}

func writeReport(w io.Writer, format reportFormat, r *ruleset.Report) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		for _, issue := range r.Issues {
			if _, err := fmt.Fprintln(w, issue); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%d cell(s) checked, %d error(s), %d warning(s)\n", r.Checked, r.Errors, r.Warnings)
		return err
	}
}
