package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	// EnvironmentPrefix is prepended to every credential environment key.
	EnvironmentPrefix = "FAVSORT_"

	sourceSeparatorConstant              = ":"
	environmentSourceTypeValueConstant   = "env"
	fileSourceTypeValueConstant          = "file"
	cookieSourceTypeValueConstant        = "cookie"
	environmentPairSeparatorConstant     = "="
	sessionEnvironmentKeyConstant        = EnvironmentPrefix + "SESSDATA"
	csrfEnvironmentKeyConstant           = EnvironmentPrefix + "BILI_JCT"
	ownerEnvironmentKeyConstant          = EnvironmentPrefix + "DEDEUSERID"
	filePathMissingErrorMessageConstant  = "credential file path must be provided"
	fileReaderNilErrorMessageConstant    = "file reader function not configured"
	unsupportedSourceTemplateConstant    = "unsupported credential source type %q"
	fileReadErrorTemplateConstant        = "unable to read credential file %s: %w"
	dotenvParseErrorTemplateConstant     = "unable to parse credential file %s: %w"
	cookieParseErrorTemplateConstant     = "unable to parse cookie file %s: %w"
	credentialResolutionTemplateConstant = "unable to resolve credentials from %s: %w"
	environmentSourceDescriptionConstant = "environment"
	sourceDescriptionTemplateConstant    = "%s:%s"
)

// SourceType enumerates the supported credential locations.
type SourceType string

// Credential source type enumerations.
const (
	SourceTypeEnvironment SourceType = SourceType(environmentSourceTypeValueConstant)
	SourceTypeDotenvFile  SourceType = SourceType(fileSourceTypeValueConstant)
	SourceTypeCookieFile  SourceType = SourceType(cookieSourceTypeValueConstant)
)

// SourceConfiguration specifies where credentials are read from.
type SourceConfiguration struct {
	Type      SourceType
	Reference string
}

// String renders the configuration in its textual form.
func (configuration SourceConfiguration) String() string {
	if configuration.Type == SourceTypeEnvironment {
		return environmentSourceDescriptionConstant
	}
	return fmt.Sprintf(sourceDescriptionTemplateConstant, configuration.Type, configuration.Reference)
}

// ParseSource interprets textual credential source declarations: "env" (the
// default when blank), "file:/path/to/.env" or "cookie:/path/to/cookie.txt".
func ParseSource(sourceValue string) (SourceConfiguration, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 || strings.EqualFold(trimmedValue, environmentSourceTypeValueConstant) {
		return SourceConfiguration{Type: SourceTypeEnvironment}, nil
	}

	components := strings.SplitN(trimmedValue, sourceSeparatorConstant, 2)
	sourceType := strings.ToLower(strings.TrimSpace(components[0]))
	reference := ""
	if len(components) == 2 {
		reference = strings.TrimSpace(components[1])
	}

	switch sourceType {
	case fileSourceTypeValueConstant:
		if len(reference) == 0 {
			return SourceConfiguration{}, errors.New(filePathMissingErrorMessageConstant)
		}
		return SourceConfiguration{Type: SourceTypeDotenvFile, Reference: reference}, nil
	case cookieSourceTypeValueConstant:
		if len(reference) == 0 {
			return SourceConfiguration{}, errors.New(filePathMissingErrorMessageConstant)
		}
		return SourceConfiguration{Type: SourceTypeCookieFile, Reference: reference}, nil
	default:
		return SourceConfiguration{}, fmt.Errorf(unsupportedSourceTemplateConstant, sourceType)
	}
}

// EnvironmentProvider returns the process environment as KEY=VALUE pairs.
type EnvironmentProvider func() []string

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// Resolver loads a Session from a configured source.
type Resolver struct {
	environmentProvider EnvironmentProvider
	fileReader          FileReader
}

// NewResolver creates a resolver with optional dependency overrides.
func NewResolver(environmentProvider EnvironmentProvider, fileReader FileReader) *Resolver {
	resolvedEnvironmentProvider := environmentProvider
	if resolvedEnvironmentProvider == nil {
		resolvedEnvironmentProvider = os.Environ
	}

	resolvedFileReader := fileReader
	if resolvedFileReader == nil {
		resolvedFileReader = os.ReadFile
	}

	return &Resolver{environmentProvider: resolvedEnvironmentProvider, fileReader: resolvedFileReader}
}

// Resolve reads the session described by source.
func (resolver *Resolver) Resolve(resolutionContext context.Context, source SourceConfiguration) (Session, error) {
	if contextError := resolutionContext.Err(); contextError != nil {
		return Session{}, contextError
	}

	environment, environmentError := resolver.environmentFor(source)
	if environmentError != nil {
		return Session{}, environmentError
	}

	var session Session
	if parseError := env.Parse(&session, env.Options{Prefix: EnvironmentPrefix, Environment: environment}); parseError != nil {
		return Session{}, fmt.Errorf(credentialResolutionTemplateConstant, source, parseError)
	}

	session = session.trimmed()
	if validationError := session.Validate(); validationError != nil {
		return Session{}, fmt.Errorf(credentialResolutionTemplateConstant, source, validationError)
	}
	return session, nil
}

func (resolver *Resolver) environmentFor(source SourceConfiguration) (map[string]string, error) {
	switch source.Type {
	case SourceTypeEnvironment, "":
		return environmentMap(resolver.environmentProvider()), nil
	case SourceTypeDotenvFile:
		contents, readError := resolver.readFile(source.Reference)
		if readError != nil {
			return nil, readError
		}
		values, parseError := godotenv.Unmarshal(string(contents))
		if parseError != nil {
			return nil, fmt.Errorf(dotenvParseErrorTemplateConstant, source.Reference, parseError)
		}
		return values, nil
	case SourceTypeCookieFile:
		contents, readError := resolver.readFile(source.Reference)
		if readError != nil {
			return nil, readError
		}
		cookies, parseError := http.ParseCookie(strings.TrimSpace(string(contents)))
		if parseError != nil {
			return nil, fmt.Errorf(cookieParseErrorTemplateConstant, source.Reference, parseError)
		}
		values := make(map[string]string, len(cookies))
		for _, cookie := range cookies {
			switch cookie.Name {
			case SessionCookieName:
				values[sessionEnvironmentKeyConstant] = cookie.Value
			case CSRFCookieName:
				values[csrfEnvironmentKeyConstant] = cookie.Value
			case OwnerCookieName:
				values[ownerEnvironmentKeyConstant] = cookie.Value
			}
		}
		return values, nil
	default:
		return nil, fmt.Errorf(unsupportedSourceTemplateConstant, source.Type)
	}
}

func (resolver *Resolver) readFile(path string) ([]byte, error) {
	if resolver.fileReader == nil {
		return nil, errors.New(fileReaderNilErrorMessageConstant)
	}
	contents, readError := resolver.fileReader(path)
	if readError != nil {
		return nil, fmt.Errorf(fileReadErrorTemplateConstant, path, readError)
	}
	return contents, nil
}

func environmentMap(pairs []string) map[string]string {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, environmentPairSeparatorConstant)
		if !found {
			continue
		}
		values[key] = value
	}
	return values
}
