package middleware

import (
	"mime/multipart"
	"net/textproto"
	"testing"
)

func TestValidateTenantID(t *testing.T) {
	for _, ok := range []string{"acme", "team_1", "a-b"} {
		if err := ValidateTenantID(ok); err != nil {
			t.Fatalf("%q: unexpected error %v", ok, err)
		}
	}
	for _, bad := range []string{"", "a b", "../etc", string(make([]byte, 65))} {
		if err := ValidateTenantID(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestValidateFilename(t *testing.T) {
	cases := map[string]string{
		"report.csv":            "report.csv",
		"../../etc/passwd":      "passwd",
		`C:\Users\me\data.xlsx`: "data.xlsx",
		"  ":                    "",
	}
	for in, want := range cases {
		got, err := ValidateFilename(in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: expected %q, got %q", in, want, got)
		}
	}
	if _, err := ValidateFilename(".."); err == nil {
		t.Fatal("expected error for ..")
	}
}

func TestValidateFileType(t *testing.T) {
	cases := []struct{ in, want string }{
		{"CSV", "csv"},
		{".xlsx", "xlsx"},
		{"text/csv", "csv"},
		{"", ""},
		{"text/plain", "txt"},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"},
	}
	for _, c := range cases {
		got, err := ValidateFileType(c.in)
		if err != nil || got != c.want {
			t.Fatalf("%q: expected %q, got %q (%v)", c.in, c.want, got, err)
		}
	}
	if _, err := ValidateFileType("exe"); err == nil {
		t.Fatal("expected error for exe")
	}
}

func TestValidateImageUpload(t *testing.T) {
	h := func(size int64, ct string) *multipart.FileHeader {
		hdr := textproto.MIMEHeader{}
		if ct != "" {
			hdr.Set("Content-Type", ct)
		}
		return &multipart.FileHeader{Filename: "a.png", Size: size, Header: hdr}
	}
	if err := ValidateImageUpload(h(10, "image/png"), 1<<20); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := ValidateImageUpload(h(0, "image/png"), 1<<20); err == nil {
		t.Fatal("expected error for empty image")
	}
	if err := ValidateImageUpload(h(2<<20, "image/png"), 1<<20); err == nil {
		t.Fatal("expected error for large image")
	}
	if err := ValidateImageUpload(h(10, "application/pdf"), 1<<20); err == nil {
		t.Fatal("expected error for pdf")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString(" a\x00b\x07c\n "); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}
