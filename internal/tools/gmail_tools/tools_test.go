package gmail_tools

import (
	"context"
	"reflect"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/manymail/manymail/internal/server"
)

func TestSplitCommaList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "a@example.com", []string{"a@example.com"}},
		{"multiple", "a@example.com,b@example.com", []string{"a@example.com", "b@example.com"}},
		{"keeps raw entries", " a , ,b", []string{" a ", " ", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitCommaList(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitCommaList(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRegisterGmailTools(t *testing.T) {
	sc := server.NewServerContext(context.Background(), t.TempDir(), nil, nil)
	defer func() { _ = sc.Shutdown() }()

	s := mcpserver.NewMCPServer("test", "0.0.0")
	if err := RegisterGmailTools(s, sc, false); err != nil {
		t.Fatalf("RegisterGmailTools() error: %v", err)
	}
}

func TestRegisterGmailToolsReadOnly(t *testing.T) {
	sc := server.NewServerContext(context.Background(), t.TempDir(), nil, nil)
	defer func() { _ = sc.Shutdown() }()

	s := mcpserver.NewMCPServer("test", "0.0.0")
	if err := RegisterGmailTools(s, sc, true); err != nil {
		t.Fatalf("RegisterGmailTools() read-only error: %v", err)
	}
}
