package credentials_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/credentials"
)

const (
	testSessionDataConstant     = "abc%2C123"
	testCSRFTokenConstant       = "csrf-token"
	testOwnerIdentifierConstant = "42"
	testDotenvPathConstant      = "/tmp/favsort.env"
	testCookiePathConstant      = "/tmp/cookie.txt"
)

func TestParseSource(testInstance *testing.T) {
	testCases := []struct {
		name           string
		value          string
		expectedSource credentials.SourceConfiguration
		expectError    bool
	}{
		{name: "blank_defaults_to_environment", value: "  ", expectedSource: credentials.SourceConfiguration{Type: credentials.SourceTypeEnvironment}},
		{name: "explicit_environment", value: "ENV", expectedSource: credentials.SourceConfiguration{Type: credentials.SourceTypeEnvironment}},
		{name: "dotenv_file", value: "file: " + testDotenvPathConstant, expectedSource: credentials.SourceConfiguration{Type: credentials.SourceTypeDotenvFile, Reference: testDotenvPathConstant}},
		{name: "cookie_file", value: "cookie:" + testCookiePathConstant, expectedSource: credentials.SourceConfiguration{Type: credentials.SourceTypeCookieFile, Reference: testCookiePathConstant}},
		{name: "file_without_path", value: "file:", expectError: true},
		{name: "unknown_type", value: "vault:secret", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			source, parseError := credentials.ParseSource(testCase.value)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedSource, source)
		})
	}
}

func TestResolverResolve(testInstance *testing.T) {
	expectedSession := credentials.Session{
		SessionData:     testSessionDataConstant,
		CSRFToken:       testCSRFTokenConstant,
		OwnerIdentifier: testOwnerIdentifierConstant,
	}

	testCases := []struct {
		name            string
		environment     []string
		files           map[string]string
		source          credentials.SourceConfiguration
		expectedSession credentials.Session
		expectError     bool
	}{
		{
			name: "environment_variables",
			environment: []string{
				"FAVSORT_SESSDATA=" + testSessionDataConstant,
				"FAVSORT_BILI_JCT=" + testCSRFTokenConstant,
				"FAVSORT_DEDEUSERID= " + testOwnerIdentifierConstant + " ",
				"UNRELATED",
			},
			source:          credentials.SourceConfiguration{Type: credentials.SourceTypeEnvironment},
			expectedSession: expectedSession,
		},
		{
			name:        "environment_missing_value",
			environment: []string{"FAVSORT_SESSDATA=" + testSessionDataConstant},
			source:      credentials.SourceConfiguration{Type: credentials.SourceTypeEnvironment},
			expectError: true,
		},
		{
			name: "environment_blank_value",
			environment: []string{
				"FAVSORT_SESSDATA=" + testSessionDataConstant,
				"FAVSORT_BILI_JCT=   ",
				"FAVSORT_DEDEUSERID=" + testOwnerIdentifierConstant,
			},
			source:      credentials.SourceConfiguration{Type: credentials.SourceTypeEnvironment},
			expectError: true,
		},
		{
			name: "dotenv_file",
			files: map[string]string{
				testDotenvPathConstant: "# session\nFAVSORT_SESSDATA=" + testSessionDataConstant + "\nFAVSORT_BILI_JCT=\"" + testCSRFTokenConstant + "\"\nFAVSORT_DEDEUSERID=" + testOwnerIdentifierConstant + "\n",
			},
			source:          credentials.SourceConfiguration{Type: credentials.SourceTypeDotenvFile, Reference: testDotenvPathConstant},
			expectedSession: expectedSession,
		},
		{
			name: "dotenv_ignores_process_environment",
			environment: []string{
				"FAVSORT_SESSDATA=" + testSessionDataConstant,
				"FAVSORT_BILI_JCT=" + testCSRFTokenConstant,
				"FAVSORT_DEDEUSERID=" + testOwnerIdentifierConstant,
			},
			files:       map[string]string{testDotenvPathConstant: "FAVSORT_SESSDATA=" + testSessionDataConstant + "\n"},
			source:      credentials.SourceConfiguration{Type: credentials.SourceTypeDotenvFile, Reference: testDotenvPathConstant},
			expectError: true,
		},
		{
			name: "cookie_file",
			files: map[string]string{
				testCookiePathConstant: "buvid3=xyz; SESSDATA=" + testSessionDataConstant + "; bili_jct=" + testCSRFTokenConstant + "; DedeUserID=" + testOwnerIdentifierConstant + "\n",
			},
			source:          credentials.SourceConfiguration{Type: credentials.SourceTypeCookieFile, Reference: testCookiePathConstant},
			expectedSession: expectedSession,
		},
		{
			name:        "cookie_file_missing_csrf",
			files:       map[string]string{testCookiePathConstant: "SESSDATA=" + testSessionDataConstant + "; DedeUserID=" + testOwnerIdentifierConstant},
			source:      credentials.SourceConfiguration{Type: credentials.SourceTypeCookieFile, Reference: testCookiePathConstant},
			expectError: true,
		},
		{
			name:        "unreadable_file",
			source:      credentials.SourceConfiguration{Type: credentials.SourceTypeCookieFile, Reference: "/missing"},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			environmentProvider := func() []string { return testCase.environment }
			fileReader := func(path string) ([]byte, error) {
				contents, exists := testCase.files[path]
				if !exists {
					return nil, errors.New("file not found")
				}
				return []byte(contents), nil
			}

			resolver := credentials.NewResolver(environmentProvider, fileReader)
			session, resolveError := resolver.Resolve(context.Background(), testCase.source)
			if testCase.expectError {
				require.Error(testInstance, resolveError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedSession, session)
		})
	}
}

func TestSessionCookieHeader(testInstance *testing.T) {
	session := credentials.Session{SessionData: "s", CSRFToken: "c", OwnerIdentifier: "7"}
	require.Equal(testInstance, "SESSDATA=s; bili_jct=c; DedeUserID=7", session.CookieHeader())
}
