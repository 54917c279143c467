package token

import (
	"net/http"
	"strings"
	"testing"
)

func TestCheckPasswordHash(t *testing.T) {
	// First, we need to create some hashed passwords for testing
	password1 := "correctPassword123!"
	password2 := "anotherPassword456!"
	hash1, _ := HashPassword(password1)
	hash2, _ := HashPassword(password2)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  bool
	}{
		{
			name:     "Correct password",
			password: password1,
			hash:     hash1,
			wantErr:  false,
		},
		{
			name:     "Incorrect password",
			password: "wrongPassword",
			hash:     hash1,
			wantErr:  true,
		},
		{
			name:     "Password doesn't match different hash",
			password: password1,
			hash:     hash2,
			wantErr:  true,
		},
		{
			name:     "Empty password",
			password: "",
			hash:     hash1,
			wantErr:  true,
		},
		{
			name:     "Invalid hash",
			password: password1,
			hash:     "invalidhash",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPasswordHash(tt.password, tt.hash)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckPasswordHash() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHashPasswordTooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 72))
	if err != ErrPasswordTooLong {
		t.Errorf("HashPassword() error = %v, want %v", err, ErrPasswordTooLong)
	}
}

func TestMakeRefreshToken(t *testing.T) {
	a, err := MakeRefreshToken()
	if err != nil {
		t.Fatalf("MakeRefreshToken() error = %v", err)
	}
	b, _ := MakeRefreshToken()
	if len(a) != 64 {
		t.Errorf("MakeRefreshToken() length = %d, want 64", len(a))
	}
	if a == b {
		t.Errorf("MakeRefreshToken() returned the same value twice")
	}
}

func TestGetBearerToken(t *testing.T) {
	validToken, _ := GenerateToken(map[string]string{"sub": "x"}, DefaultConfig())
	invalidToken := "Invalid.Token"

	tests := []struct {
		name            string
		header          http.Header
		wantTokenString string
		wantErr         bool
	}{
		{
			name:            "Valid Bearer",
			header:          http.Header{"Authorization": []string{"Bearer " + validToken}},
			wantTokenString: validToken,
		},
		{
			name:    "Missing space after scheme",
			header:  http.Header{"Authorization": []string{"Bearer" + invalidToken}},
			wantErr: true,
		},
		{
			name:    "Bearer Present But No Token",
			header:  http.Header{"Authorization": []string{"Bearer "}},
			wantErr: true,
		},
		{
			name:            "NonJWT",
			header:          http.Header{"Authorization": []string{"Bearer " + invalidToken}},
			wantTokenString: invalidToken,
		},
		{
			name:    "Bearer not Present",
			header:  http.Header{"Authorization": []string{invalidToken}},
			wantErr: true,
		},
		{
			name:    "No header",
			header:  http.Header{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotTokenString, err := GetBearerToken(tt.header)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetBearerToken() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantTokenString != gotTokenString {
				t.Errorf("GetBearerToken() gotTokenString = %v, want %v", gotTokenString, tt.wantTokenString)
			}
		})
	}
}

func TestGetAPIKey(t *testing.T) {
	got, err := GetAPIKey(http.Header{"Authorization": []string{"ApiKey  abc123 "}})
	if err != nil || got != "abc123" {
		t.Errorf("GetAPIKey() = %q, %v", got, err)
	}
	if _, err := GetAPIKey(http.Header{"Authorization": []string{"Bearer abc"}}); err == nil {
		t.Error("GetAPIKey() expected error for Bearer scheme")
	}
}
