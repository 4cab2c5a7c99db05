package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "JSON uppercase", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "whitespace trimmed", input: "  table  ", want: FormatTable},
		{name: "invalid format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestPrintJSON(t *testing.T) {
	data := struct {
		RoomID  string `json:"room_id"`
		Version int64  `json:"version"`
	}{RoomID: "abc12345", Version: 7}

	var buf bytes.Buffer
	if err := PrintJSON(&buf, data); err != nil {
		t.Fatalf("PrintJSON failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"room_id": "abc12345"`) {
		t.Errorf("JSON output missing field: %s", buf.String())
	}
}

func TestPrintYAML(t *testing.T) {
	data := struct {
		RoomID  string `yaml:"room_id"`
		Version int64  `yaml:"version"`
	}{RoomID: "abc12345", Version: 7}

	var buf bytes.Buffer
	if err := PrintYAML(&buf, data); err != nil {
		t.Fatalf("PrintYAML failed: %v", err)
	}
	if !strings.Contains(buf.String(), "room_id: abc12345") {
		t.Errorf("YAML output missing field: %s", buf.String())
	}
}
