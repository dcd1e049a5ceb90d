package debug

import (
	"io"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	fn()
	_ = w.Close()
	os.Stdout = orig
	data, _ := io.ReadAll(r)
	return string(data)
}

func TestPrintNormal(t *testing.T) {
	SetQuiet(false)
	out := captureStdout(t, func() { PrintNormal("hello %s\n", "world") })
	if out != "hello world\n" {
		t.Errorf("got %q", out)
	}
}

func TestQuietSuppressesPrintNormal(t *testing.T) {
	SetQuiet(true)
	defer SetQuiet(false)

	if !IsQuiet() {
		t.Fatal("SetQuiet(true) should flip IsQuiet")
	}
	if out := captureStdout(t, func() { PrintNormal("hello\n") }); out != "" {
		t.Errorf("quiet mode printed %q", out)
	}
}

func TestLogfGatedByVerbose(t *testing.T) {
	if enabled {
		t.Skip("GROOMER_DEBUG set in the environment")
	}

	orig := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w

	SetVerbose(false)
	Logf("hidden\n")
	SetVerbose(true)
	Logf("visible\n")
	SetVerbose(false)

	_ = w.Close()
	os.Stderr = orig
	data, _ := io.ReadAll(r)

	if strings.Contains(string(data), "hidden") {
		t.Errorf("Logf wrote without verbose: %q", data)
	}
	if !strings.Contains(string(data), "visible") {
		t.Errorf("Logf should write when verbose: %q", data)
	}
}
