package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"cfacheck"
)

var severityTags = map[cfacheck.Severity]*color.Color{
	cfacheck.SevInfo:    color.New(color.FgCyan),
	cfacheck.SevWarning: color.New(color.FgYellow),
	cfacheck.SevError:   color.New(color.FgRed, color.Bold),
}

func renderPretty(w io.Writer, diags []cfacheck.Diagnostic, colorMode string) {
	switch colorMode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}

	for _, d := range diags {
		tag := d.Severity.String()
		if c, ok := severityTags[d.Severity]; ok {
			tag = c.Sprint(tag)
		}

		fmt.Fprintf(w, "%s %s %s (%s)\n", tag, d.Rule, d.Func, d.Pos)
		fmt.Fprintf(w, "    %s\n", d.Message)
		if d.Declared != nil {
			fmt.Fprintf(w, "    %s: declared %v, inferred %s\n", d.Bit, *d.Declared, d.Inferred)
		}
	}

	if len(diags) == 0 {
		fmt.Fprintln(w, "no findings")
	}
}

type jsonDiag struct {
	Phase    string `json:"phase"`
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Col      int    `json:"col"`
	Func     string `json:"func"`
	Bit      string `json:"bit,omitempty"`
	Declared *bool  `json:"declared,omitempty"`
	Inferred string `json:"inferred,omitempty"`
	Message  string `json:"message"`
}

func renderJSON(w io.Writer, diags []cfacheck.Diagnostic) error {
	out := make([]jsonDiag, 0, len(diags))
	for _, d := range diags {
		jd := jsonDiag{
			Phase:    d.Phase.String(),
			Rule:     d.Rule.String(),
			Severity: d.Severity.String(),
			File:     d.Pos.File,
			Line:     d.Pos.Line,
			Col:      d.Pos.Col,
			Func:     d.Func,
			Declared: d.Declared,
			Message:  d.Message,
		}
		if d.Declared != nil {
			jd.Bit = d.Bit.String()
			jd.Inferred = d.Inferred.String()
		}
		out = append(out, jd)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
