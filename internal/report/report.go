// Package report renders scoring reports.
//
// The text format ends with two lines that downstream automation relies on:
//
//	Scoring executable at:<path>
//	FS_SCORE:<n>%
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amccague/zscore/internal/models"
	"github.com/beevik/etree"
	"gopkg.in/yaml.v3"
)

// Format selects how a report is rendered
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatJUnit Format = "junit"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML, FormatJUnit:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown report format %q (want text, json, yaml or junit)", s)
}

// ScoreLine returns the machine-readable score line
func ScoreLine(score int) string {
	return fmt.Sprintf("FS_SCORE:%d%%", score)
}

// Write renders the report in the given format
func Write(w io.Writer, format Format, r models.Report) error {
	switch format {
	case FormatText, "":
		return writeText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode yaml report: %w", err)
		}
		return enc.Close()
	case FormatJUnit:
		return writeJUnit(w, r)
	}
	return fmt.Errorf("unknown report format %q", format)
}

func writeText(w io.Writer, r models.Report) error {
	var b strings.Builder
	for _, c := range r.Cases {
		for _, d := range c.Diagnostics {
			fmt.Fprintf(&b, "%s: %s\n", c.Name, d)
		}
		fmt.Fprintf(&b, "%s: Score %d/%d\n", c.Name, c.Score, c.MaxScore)
	}
	fmt.Fprintf(&b, "Scoring executable at:%s\n", r.Executable)
	b.WriteString(ScoreLine(r.Score))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeJUnit(w io.Writer, r models.Report) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	suites := doc.CreateElement("testsuites")
	suite := suites.CreateElement("testsuite")
	suite.CreateAttr("name", "zscore")
	suite.CreateAttr("timestamp", r.StartedAt.UTC().Format("2006-01-02T15:04:05"))
	suite.CreateAttr("time", seconds(r.FinishedAt.Sub(r.StartedAt).Milliseconds()))

	props := suite.CreateElement("properties")
	addProperty(props, "executable", r.Executable)
	addProperty(props, "score", strconv.Itoa(r.Score))

	failures := 0
	for _, c := range r.Cases {
		tc := suite.CreateElement("testcase")
		tc.CreateAttr("name", c.Name)
		tc.CreateAttr("classname", fmt.Sprintf("zscore.amount%d", c.Amount))
		tc.CreateAttr("time", seconds(c.DurationMs))
		if c.Passed() {
			continue
		}
		failures++
		f := tc.CreateElement("failure")
		f.CreateAttr("message", fmt.Sprintf("Score %d/%d", c.Score, c.MaxScore))
		f.SetText(strings.Join(c.Diagnostics, "\n"))
	}

	tests := len(r.Cases)
	errs := 0
	if r.Failed() {
		errs = 1
		tests++
		tc := suite.CreateElement("testcase")
		tc.CreateAttr("name", "run")
		tc.CreateAttr("classname", "zscore")
		e := tc.CreateElement("error")
		e.CreateAttr("message", "Unable to score submission")
		e.SetText(r.Error)
	}

	suite.CreateAttr("tests", strconv.Itoa(tests))
	suite.CreateAttr("failures", strconv.Itoa(failures))
	suite.CreateAttr("errors", strconv.Itoa(errs))

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write junit report: %w", err)
	}
	return nil
}

func addProperty(props *etree.Element, name, value string) {
	p := props.CreateElement("property")
	p.CreateAttr("name", name)
	p.CreateAttr("value", value)
}

func seconds(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}
