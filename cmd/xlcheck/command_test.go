package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/javajack/xlrule/ruleset"
)

const testRules = `
sheet: Sheet1
checks:
  - range: A1:A3
    type: int
    rules:
      - rule: notNull
      - rule: contains
        values: [1, 2, 3]
`

// writeFixtures saves a workbook with A1=1, A2=5, A3 blank and the rule file.
func writeFixtures(t *testing.T) (workbook, rules string) {
	t.Helper()
	dir := t.TempDir()

	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", 1)
	f.SetCellValue("Sheet1", "A2", 5)
	workbook = filepath.Join(dir, "book.xlsx")
	require.NoError(t, f.SaveAs(workbook))

	rules = filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte(testRules), 0o644))
	return workbook, rules
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newCommand(&out).Run(context.Background(), append([]string{name}, args...))
	return out.String(), err
}

func TestCommand_TextReport(t *testing.T) {
	workbook, rules := writeFixtures(t)

	out, err := runCommand(t, "--rules", rules, workbook)
	require.NoError(t, err)
	assert.Equal(t, "[ERROR] Sheet1!A2: A2 is not contains.\n"+
		"[ERROR] Sheet1!A3: A3 is not null.\n"+
		"3 cell(s) checked, 2 error(s), 0 warning(s)\n", out)
}

func TestCommand_JSONReport(t *testing.T) {
	workbook, rules := writeFixtures(t)

	out, err := runCommand(t, "-r", rules, "-f", "json", workbook)
	require.NoError(t, err)

	var report struct {
		Checked int `json:"checked"`
		Errors  int `json:"errors"`
		Issues  []struct {
			Severity string `json:"severity"`
			Cell     struct {
				Address string `json:"address"`
			} `json:"cell"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 2, report.Errors)
	require.Len(t, report.Issues, 2)
	assert.Equal(t, "error", report.Issues[0].Severity)
	assert.Equal(t, "A2", report.Issues[0].Cell.Address)
}

func TestCommand_YAMLReport(t *testing.T) {
	workbook, rules := writeFixtures(t)

	out, err := runCommand(t, "-r", rules, "-f", "yaml", workbook)
	require.NoError(t, err)

	var report ruleset.Report
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Errors)
	require.Len(t, report.Issues, 2)
	assert.Equal(t, "A3 is not null.", report.Issues[1].Message)
}

func TestCommand_FailOnError(t *testing.T) {
	workbook, rules := writeFixtures(t)

	_, err := runCommand(t, "-r", rules, "--fail-on-error", workbook)
	require.Error(t, err)
	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.ExitCode())
}

func TestCommand_Errors(t *testing.T) {
	workbook, rules := writeFixtures(t)

	_, err := runCommand(t, "-r", rules, "-f", "xml", workbook)
	assert.ErrorContains(t, err, "unknown output format")

	_, err = runCommand(t, "-r", rules)
	assert.ErrorContains(t, err, "expected exactly one workbook argument")

	_, err = runCommand(t, "-r", filepath.Join(t.TempDir(), "none.yaml"), workbook)
	assert.ErrorContains(t, err, "read rule file")

	_, err = runCommand(t, "-r", rules, filepath.Join(t.TempDir(), "none.xlsx"))
	assert.ErrorContains(t, err, "open workbook")
}

func TestParseFormat(t *testing.T) {
	for _, f := range []string{"text", "json", "yaml"} {
		got, err := parseFormat(f)
		require.NoError(t, err)
		assert.Equal(t, reportFormat(f), got)
	}
	_, err := parseFormat("")
	assert.Error(t, err)
}
