package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestStripDataURLPrefix(t *testing.T) {
	cases := map[string]string{
		"data:image/png;base64,AAAA": "AAAA",
		"data:image/jpeg;base64,a,b": "a,b",
		"QUJD":                       "QUJD",
		"data:text/plain;base64,":    "",
	}
	for in, want := range cases {
		if got := StripDataURLPrefix(in); got != want {
			t.Fatalf("StripDataURLPrefix(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestMakeDataURLRoundTrip(t *testing.T) {
	url := MakeDataURL("image/png", []byte("abc"))
	if url != "data:image/png;base64,YWJj" {
		t.Fatalf("unexpected data url %s", url)
	}
	if got := StripDataURLPrefix(url); got != "YWJj" {
		t.Fatalf("expected YWJj, got %s", got)
	}
}

func TestReadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	if err := os.WriteFile(path, []byte("pixels"), 0o600); err != nil {
		t.Fatal(err)
	}

	data, err := ReadImage(context.Background(), FileImage(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "pixels" {
		t.Fatalf("expected pixels, got %q", data)
	}

	if _, err := ReadImage(context.Background(), FileImage(filepath.Join(t.TempDir(), "missing.png"))); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := ReadImage(context.Background(), BytesImage("empty.png", nil)); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ReadImage(ctx, BytesImage("a.png", []byte("x"))); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAPIErrorQuota(t *testing.T) {
	err := fmt.Errorf("generate: %w", &APIError{Provider: "huggingface", StatusCode: 429, Message: "slow down"})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatal("expected 429 to match ErrQuotaExceeded")
	}
	if errors.Is(&APIError{StatusCode: 500}, ErrQuotaExceeded) {
		t.Fatal("500 must not match ErrQuotaExceeded")
	}
}

func TestResponseEnvelope(t *testing.T) {
	out, _ := json.Marshal(OK("text"))
	if string(out) != `{"success":true,"data":"text"}` {
		t.Fatalf("unexpected envelope %s", out)
	}
	out, _ = json.Marshal(Failed("Failed to analyze image", ""))
	if string(out) != `{"success":false,"data":"","error":"Failed to analyze image"}` {
		t.Fatalf("unexpected envelope %s", out)
	}
}
