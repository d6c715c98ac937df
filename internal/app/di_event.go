package app

import (
	"fmt"

	eventHTTP "github.com/authware/authority/internal/event/http"
	eventRepository "github.com/authware/authority/internal/event/repository"
	eventUseCase "github.com/authware/authority/internal/event/usecase"
	"github.com/authware/authority/internal/http"
	identityHTTP "github.com/authware/authority/internal/identity/http"
	tokenHTTP "github.com/authware/authority/internal/token/http"
)

// EventRepository returns the event repository based on database driver.
func (c *Container) EventRepository() (eventUseCase.EventRepository, error) {
	var err error
	c.eventRepoInit.Do(func() {
		c.eventRepo, err = c.initEventRepository()
		if err != nil {
			c.initErrors["eventRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventRepository"]; exists {
		return nil, storedErr
	}
	return c.eventRepo, nil
}

// WebhookRepository returns the webhook repository based on database driver.
func (c *Container) WebhookRepository() (eventUseCase.WebhookRepository, error) {
	var err error
	c.webhookRepoInit.Do(func() {
		c.webhookRepo, err = c.initWebhookRepository()
		if err != nil {
			c.initErrors["webhookRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["webhookRepository"]; exists {
		return nil, storedErr
	}
	return c.webhookRepo, nil
}

// EventEmitter returns the audit event pipeline: persistence plus background
// webhook delivery. It doubles as the EventUseCase for the read side.
func (c *Container) EventEmitter() (*eventUseCase.AuditEventUseCase, error) {
	var err error
	c.eventEmitterInit.Do(func() {
		c.eventEmitter, err = c.initEventEmitter()
		if err != nil {
			c.initErrors["eventEmitter"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventEmitter"]; exists {
		return nil, storedErr
	}
	return c.eventEmitter, nil
}

// WebhookUseCase returns the webhook subscription use case.
func (c *Container) WebhookUseCase() (eventUseCase.WebhookUseCase, error) {
	var err error
	c.webhookUseCaseInit.Do(func() {
		c.webhookUseCase, err = c.initWebhookUseCase()
		if err != nil {
			c.initErrors["webhookUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["webhookUseCase"]; exists {
		return nil, storedErr
	}
	return c.webhookUseCase, nil
}

// initEventRepository creates the event repository based on the database driver.
func (c *Container) initEventRepository() (eventUseCase.EventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for event repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return eventRepository.NewPostgreSQLEventRepository(db), nil
	case "mysql":
		return eventRepository.NewMySQLEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initWebhookRepository creates the webhook repository based on the database driver.
func (c *Container) initWebhookRepository() (eventUseCase.WebhookRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for webhook repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return eventRepository.NewPostgreSQLWebhookRepository(db), nil
	case "mysql":
		return eventRepository.NewMySQLWebhookRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEventEmitter creates the audit event pipeline with its webhook dispatcher.
func (c *Container) initEventEmitter() (*eventUseCase.AuditEventUseCase, error) {
	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for event emitter: %w", err)
	}

	webhookRepo, err := c.WebhookRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook repository for event emitter: %w", err)
	}

	dispatcher := eventUseCase.NewWebhookDispatcher(
		webhookRepo,
		c.config.WebhookTimeout,
		c.config.WebhookMaxConcurrency,
		c.Logger(),
	)

	return eventUseCase.NewEventUseCase(eventRepo, dispatcher, c.config.EventRetention, c.Logger()), nil
}

// initWebhookUseCase creates the webhook subscription use case.
func (c *Container) initWebhookUseCase() (eventUseCase.WebhookUseCase, error) {
	webhookRepo, err := c.WebhookRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook repository for webhook use case: %w", err)
	}

	return eventUseCase.NewWebhookUseCase(webhookRepo), nil
}

// initHandlers assembles the request handlers mounted by the API server.
func (c *Container) initHandlers() (http.Handlers, error) {
	logger := c.Logger()

	tokens, err := c.TokenUseCase()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get token use case for handlers: %w", err)
	}

	memberships, err := c.MembershipUseCase()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get membership use case for handlers: %w", err)
	}

	users, err := c.UserUseCase()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get user use case for handlers: %w", err)
	}

	applications, err := c.ApplicationUseCase()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get application use case for handlers: %w", err)
	}

	roles, err := c.RoleUseCase()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get role use case for handlers: %w", err)
	}

	events, err := c.EventEmitter()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get event emitter for handlers: %w", err)
	}

	webhooks, err := c.WebhookUseCase()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get webhook use case for handlers: %w", err)
	}

	return http.Handlers{
		Token:       tokenHTTP.NewTokenHandler(tokens, logger),
		Membership:  identityHTTP.NewMembershipHandler(memberships, logger),
		User:        identityHTTP.NewUserHandler(users, logger),
		Application: identityHTTP.NewApplicationHandler(applications, logger),
		Role:        identityHTTP.NewRoleHandler(roles, logger),
		Event:       eventHTTP.NewEventHandler(events, logger),
		Webhook:     eventHTTP.NewWebhookHandler(webhooks, logger),
	}, nil
}
