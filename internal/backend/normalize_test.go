package backend

import "testing"

func TestNormalizeLogin(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantToken string
		wantEmail string
		wantErr   bool
	}{
		{
			name:      "nested user shape",
			data:      `{"token":"tok-1","user":{"firstName":"Priya","email":"priya@example.com","role":"patient"}}`,
			wantToken: "tok-1",
			wantEmail: "priya@example.com",
		},
		{
			name:      "flat shape",
			data:      `{"token":"tok-2","firstName":"Arjun","email":"arjun@example.com","role":"doctor"}`,
			wantToken: "tok-2",
			wantEmail: "arjun@example.com",
		},
		{
			name:    "no token",
			data:    `{"firstName":"Ghost"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			data:    `<html>502 Bad Gateway</html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, user, err := NormalizeLogin([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeLogin failed: %v", err)
			}
			if token != tt.wantToken {
				t.Errorf("expected token %q, got %q", tt.wantToken, token)
			}
			if user == nil || user.Email != tt.wantEmail {
				t.Errorf("expected user email %q, got %+v", tt.wantEmail, user)
			}
		})
	}
}
