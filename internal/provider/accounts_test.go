package provider

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mowind/walletrpc-go/internal/jsonrpc"
)

func TestParseAccounts(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "checksums lower case address",
			input: `["0x9b2055d370f73ec7d8a03e965129118dc8f5bf83"]`,
			want:  []string{"0x9B2055d370F73eC7d8a03E965129118dC8F5bf83"},
		},
		{
			name:  "empty",
			input: `[]`,
			want:  []string{},
		},
		{
			name:  "null",
			input: `null`,
			want:  nil,
		},
		{
			name:    "not an array",
			input:   `"0x9b2055d370f73ec7d8a03e965129118dc8f5bf83"`,
			wantErr: true,
		},
		{
			name:    "invalid address",
			input:   `["0x1234"]`,
			wantErr: true,
		},
		{
			name:    "non string entry",
			input:   `[42]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAccounts(json.RawMessage(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAccounts() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseAccounts() got %d accounts, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].String() != tt.want[i] {
					t.Errorf("account %d = %s, want %s", i, got[i].String(), tt.want[i])
				}
			}
		})
	}
}

func TestRequestAccounts(t *testing.T) {
	var gotMethod string
	p := Func(func(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
		gotMethod = method
		return json.RawMessage(`["0x9b2055d370f73ec7d8a03e965129118dc8f5bf83"]`), nil
	})

	accounts, err := RequestAccounts(context.Background(), p)
	if err != nil {
		t.Fatalf("RequestAccounts() error = %v", err)
	}
	if gotMethod != MethodRequestAccounts {
		t.Errorf("expected %s, got %s", MethodRequestAccounts, gotMethod)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(accounts))
	}

	if _, err := Accounts(context.Background(), p); err != nil {
		t.Fatalf("Accounts() error = %v", err)
	}
	if gotMethod != MethodAccounts {
		t.Errorf("expected %s, got %s", MethodAccounts, gotMethod)
	}

	rejecting := Func(func(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
		return nil, jsonrpc.NewCustomError(jsonrpc.CodeUserRejected, "User rejected the request.", nil)
	})
	_, err = RequestAccounts(context.Background(), rejecting)
	var rpcErr *jsonrpc.Error
	if !errors.As(err, &rpcErr) || !rpcErr.IsUserRejection() {
		t.Errorf("expected user rejection to propagate, got %v", err)
	}
}

func TestIsAddress(t *testing.T) {
	if !IsAddress("0x9b2055d370f73ec7d8a03e965129118dc8f5bf83") {
		t.Error("expected valid address")
	}
	if IsAddress("9b2055d370f73ec7d8a03e965129118dc8f5bf83") || IsAddress("0xzz") {
		t.Error("expected invalid address")
	}
}
