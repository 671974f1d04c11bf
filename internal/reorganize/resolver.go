package reorganize

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/bilibili"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/collector"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/credentials"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/migration"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/retry"
	"github.com/agonielv/agonielv-bilibili-Sort/internal/ui"
)

const (
	credentialResolutionErrorTemplateConstant = "unable to load credentials: %w"
	clientCreationErrorTemplateConstant       = "unable to create API client: %w"
)

// Runner plans and executes a reorganization.
type Runner interface {
	Plan(executionContext context.Context, request migration.Request) (migration.Plan, error)
	Execute(executionContext context.Context, plan migration.Plan) (migration.ExecutionResult, error)
}

// ResolvedService couples a runner with the account it acts for.
type ResolvedService struct {
	Runner          Runner
	OwnerIdentifier string
}

// ServiceResolver creates the runner used by the sort command.
type ServiceResolver interface {
	Resolve(executionContext context.Context, logger *zap.Logger, options SortOptions) (ResolvedService, error)
}

// DefaultServiceResolver wires credentials, the HTTP client, the collector and the orchestrator.
type DefaultServiceResolver struct {
	HTTPClient          bilibili.HTTPDoer
	EnvironmentProvider credentials.EnvironmentProvider
	FileReader          credentials.FileReader
	Sleeper             retry.Sleeper
}

// Resolve builds a migration service bound to the session named by options.
func (resolver *DefaultServiceResolver) Resolve(executionContext context.Context, logger *zap.Logger, options SortOptions) (ResolvedService, error) {
	credentialResolver := credentials.NewResolver(resolver.EnvironmentProvider, resolver.FileReader)
	session, sessionError := credentialResolver.Resolve(executionContext, options.CredentialSource)
	if sessionError != nil {
		return ResolvedService{}, fmt.Errorf(credentialResolutionErrorTemplateConstant, sessionError)
	}

	configuration := options.Configuration
	client, clientError := bilibili.NewClient(bilibili.Config{
		BaseURL:        configuration.BaseURL,
		HTTPClient:     resolver.HTTPClient,
		Session:        session,
		RequestTimeout: configuration.RequestTimeout,
	})
	if clientError != nil {
		return ResolvedService{}, fmt.Errorf(clientCreationErrorTemplateConstant, clientError)
	}

	eventLogger := ui.NewConsoleEventLogger(logger)
	retryExecutor := retry.NewExecutor(configuration.RetryPolicy(), eventLogger, resolver.Sleeper)

	itemCollector, collectorError := collector.NewCollector(client, configuration.CollectorSettings(), retryExecutor, eventLogger)
	if collectorError != nil {
		return ResolvedService{}, collectorError
	}

	service, serviceError := migration.NewService(migration.ServiceDependencies{
		Logger:        logger,
		RemoteClient:  client,
		ItemCollector: itemCollector,
		RetryExecutor: retryExecutor,
		Observer:      eventLogger,
		Sleeper:       resolver.Sleeper,
		Settings:      configuration.MigrationSettings(),
	})
	if serviceError != nil {
		return ResolvedService{}, serviceError
	}

	return ResolvedService{Runner: service, OwnerIdentifier: session.OwnerIdentifier}, nil
}
