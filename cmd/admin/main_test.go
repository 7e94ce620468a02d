package main

import (
	"bytes"
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/account-service/internal/model"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr string
	}{
		{
			name: "defaults",
			args: []string{"-email", " Root@Example.com "},
			want: options{email: "root@example.com", firstName: "Admin", lastName: "User", role: model.RoleSuperAdmin},
		},
		{
			name: "explicit",
			args: []string{"-email", "ops@example.com", "-first-name", "Ops", "-last-name", "Team", "-role", "admin"},
			want: options{email: "ops@example.com", firstName: "Ops", lastName: "Team", role: model.RoleAdmin},
		},
		{name: "missing email", args: nil, wantErr: "-email is required"},
		{name: "blank name", args: []string{"-email", "a@b.co", "-first-name", "  "}, wantErr: "names must not be empty"},
		{name: "unknown role", args: []string{"-email", "a@b.co", "-role", "owner"}, wantErr: `unknown role "owner"`},
		{name: "unknown flag", args: []string{"-nope"}, wantErr: "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args, io.Discard)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlags_Help(t *testing.T) {
	_, err := parseFlags([]string{"-h"}, io.Discard)
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })

	readPassword = func() ([]byte, error) {
		if len(answers) == 0 {
			return nil, io.ErrUnexpectedEOF
		}
		next := answers[0]
		answers = answers[1:]
		return []byte(next), nil
	}
}

func TestPromptPassword(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		want    string
		wantErr string
	}{
		{name: "match", answers: []string{"Secret123!", "Secret123!"}, want: "Secret123!"},
		{name: "mismatch", answers: []string{"Secret123!", "Secret124!"}, wantErr: "passwords do not match"},
		{name: "too short", answers: []string{"short", "short"}, wantErr: "at least 8 characters"},
		{name: "input closed", answers: []string{"Secret123!"}, wantErr: io.ErrUnexpectedEOF.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubPasswords(t, tt.answers...)

			var out bytes.Buffer
			got, err := promptPassword(&out)
			assert.Contains(t, out.String(), "Password: ")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
