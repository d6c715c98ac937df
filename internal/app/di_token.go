package app

import (
	"fmt"

	tokenRepository "github.com/authware/authority/internal/token/repository"
	tokenService "github.com/authware/authority/internal/token/service"
	tokenUseCase "github.com/authware/authority/internal/token/usecase"
)

// RevokedTokenRepository returns the revocation store based on database driver.
func (c *Container) RevokedTokenRepository() (tokenUseCase.RevokedTokenRepository, error) {
	var err error
	c.revokedTokenRepoInit.Do(func() {
		c.revokedTokenRepo, err = c.initRevokedTokenRepository()
		if err != nil {
			c.initErrors["revokedTokenRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["revokedTokenRepository"]; exists {
		return nil, storedErr
	}
	return c.revokedTokenRepo, nil
}

// TokenUseCase returns the token lifecycle use case.
func (c *Container) TokenUseCase() (tokenUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// initRevokedTokenRepository creates the revocation store based on the database driver.
func (c *Container) initRevokedTokenRepository() (tokenUseCase.RevokedTokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for revoked token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return tokenRepository.NewPostgreSQLRevokedTokenRepository(db), nil
	case "mysql":
		return tokenRepository.NewMySQLRevokedTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTokenUseCase creates the token lifecycle use case with all its dependencies.
func (c *Container) initTokenUseCase() (tokenUseCase.TokenUseCase, error) {
	membershipRepository, err := c.MembershipRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get membership repository for token use case: %w", err)
	}

	userRepository, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for token use case: %w", err)
	}

	applicationRepository, err := c.ApplicationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get application repository for token use case: %w", err)
	}

	revokedTokenRepository, err := c.RevokedTokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get revoked token repository for token use case: %w", err)
	}

	keyKeeper, err := c.KeyKeeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get key keeper for token use case: %w", err)
	}

	events, err := c.EventEmitter()
	if err != nil {
		return nil, fmt.Errorf("failed to get event emitter for token use case: %w", err)
	}

	baseUseCase := tokenUseCase.NewTokenUseCase(
		c.config,
		membershipRepository,
		userRepository,
		applicationRepository,
		revokedTokenRepository,
		tokenService.NewJWTCodec(),
		c.PasswordService(),
		keyKeeper,
		events,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return tokenUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
