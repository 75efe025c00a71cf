package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/storage"
)

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240131120000
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1111
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101
<DTEND>20240131
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115
<TRNAMT>-15.99
<FITID>A1
<NAME>NETFLIX.COM
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240120
<TRNAMT>2500.00
<FITID>A2
<NAME>EMPLOYER PAYROLL
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>5000.00
<DTASOF>20240131
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

// runCLI executes the root command against a config file pointing at dbPath.
func runCLI(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database:\n  path: "+dbPath+"\nlogging:\n  level: error\n"), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		cfgFile = ""
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_ImportAndList(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "spice.db")
	stmts := filepath.Join(dir, "statements")
	require.NoError(t, os.MkdirAll(stmts, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(stmts, "jan.ofx"), []byte(sampleOFX), 0o600))

	out, err := runCLI(t, dbPath, "import", "ofx", stmts)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 new transactions from ofx")

	out, err = runCLI(t, dbPath, "import", "ofx", filepath.Join(stmts, "*.ofx"))
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 new transactions")
	assert.Contains(t, out, "2 already stored")

	out, err = runCLI(t, dbPath, "subscriptions", "list", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)

	out, err = runCLI(t, dbPath, "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf("Current version: %d", storage.ExpectedSchemaVersion))
}

func TestCLI_Insights_BadFormat(t *testing.T) {
	_, err := runCLI(t, filepath.Join(t.TempDir(), "spice.db"), "insights", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestCollectOFXFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.ofx", "b.QFX", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	files, err := collectOFXFiles([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.ofx"), filepath.Join(dir, "b.QFX")}, files)

	files, err = collectOFXFiles([]string{filepath.Join(dir, "*.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "notes.txt")}, files)

	files, err = collectOFXFiles([]string{filepath.Join(dir, "missing-*.ofx")})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRangeFromFlags(t *testing.T) {
	newCmd := func(args ...string) *cobra.Command {
		cmd := &cobra.Command{Use: "x"}
		cmd.Flags().String("start", "", "")
		cmd.Flags().String("end", "", "")
		require.NoError(t, cmd.Flags().Parse(args))
		return cmd
	}

	r, err := rangeFromFlags(newCmd())
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	r, err = rangeFromFlags(newCmd("--start", "2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.True(t, r.End.IsZero())

	_, err = rangeFromFlags(newCmd("--end", "01/31/2024"))
	require.Error(t, err)
}

func TestCheckFormat(t *testing.T) {
	require.NoError(t, checkFormat("table"))
	require.NoError(t, checkFormat("json"))
	require.Error(t, checkFormat("csv"))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty())
}
