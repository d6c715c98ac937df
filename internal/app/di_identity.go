package app

import (
	"fmt"

	identityRepository "github.com/authware/authority/internal/identity/repository"
	identityUseCase "github.com/authware/authority/internal/identity/usecase"
)

// MembershipRepository returns the membership repository based on database driver.
func (c *Container) MembershipRepository() (identityUseCase.MembershipRepository, error) {
	var err error
	c.membershipRepoInit.Do(func() {
		c.membershipRepo, err = c.initMembershipRepository()
		if err != nil {
			c.initErrors["membershipRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["membershipRepository"]; exists {
		return nil, storedErr
	}
	return c.membershipRepo, nil
}

// UserRepository returns the user repository based on database driver.
func (c *Container) UserRepository() (identityUseCase.UserRepository, error) {
	var err error
	c.userRepoInit.Do(func() {
		c.userRepo, err = c.initUserRepository()
		if err != nil {
			c.initErrors["userRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userRepository"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// ApplicationRepository returns the application repository based on database driver.
func (c *Container) ApplicationRepository() (identityUseCase.ApplicationRepository, error) {
	var err error
	c.applicationRepoInit.Do(func() {
		c.applicationRepo, err = c.initApplicationRepository()
		if err != nil {
			c.initErrors["applicationRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["applicationRepository"]; exists {
		return nil, storedErr
	}
	return c.applicationRepo, nil
}

// RoleRepository returns the role repository based on database driver.
func (c *Container) RoleRepository() (identityUseCase.RoleRepository, error) {
	var err error
	c.roleRepoInit.Do(func() {
		c.roleRepo, err = c.initRoleRepository()
		if err != nil {
			c.initErrors["roleRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleRepository"]; exists {
		return nil, storedErr
	}
	return c.roleRepo, nil
}

// MembershipUseCase returns the membership use case.
func (c *Container) MembershipUseCase() (identityUseCase.MembershipUseCase, error) {
	var err error
	c.membershipUseCaseInit.Do(func() {
		c.membershipUseCase, err = c.initMembershipUseCase()
		if err != nil {
			c.initErrors["membershipUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["membershipUseCase"]; exists {
		return nil, storedErr
	}
	return c.membershipUseCase, nil
}

// UserUseCase returns the user use case.
func (c *Container) UserUseCase() (identityUseCase.UserUseCase, error) {
	var err error
	c.userUseCaseInit.Do(func() {
		c.userUseCase, err = c.initUserUseCase()
		if err != nil {
			c.initErrors["userUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userUseCase"]; exists {
		return nil, storedErr
	}
	return c.userUseCase, nil
}

// ApplicationUseCase returns the application use case.
func (c *Container) ApplicationUseCase() (identityUseCase.ApplicationUseCase, error) {
	var err error
	c.applicationUseCaseInit.Do(func() {
		c.applicationUseCase, err = c.initApplicationUseCase()
		if err != nil {
			c.initErrors["applicationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["applicationUseCase"]; exists {
		return nil, storedErr
	}
	return c.applicationUseCase, nil
}

// RoleUseCase returns the role use case.
func (c *Container) RoleUseCase() (identityUseCase.RoleUseCase, error) {
	var err error
	c.roleUseCaseInit.Do(func() {
		c.roleUseCase, err = c.initRoleUseCase()
		if err != nil {
			c.initErrors["roleUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleUseCase"]; exists {
		return nil, storedErr
	}
	return c.roleUseCase, nil
}

// initMembershipRepository creates the membership repository based on the database driver.
func (c *Container) initMembershipRepository() (identityUseCase.MembershipRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for membership repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return identityRepository.NewPostgreSQLMembershipRepository(db), nil
	case "mysql":
		return identityRepository.NewMySQLMembershipRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initUserRepository creates the user repository based on the database driver.
func (c *Container) initUserRepository() (identityUseCase.UserRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return identityRepository.NewPostgreSQLUserRepository(db), nil
	case "mysql":
		return identityRepository.NewMySQLUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initApplicationRepository creates the application repository based on the database driver.
func (c *Container) initApplicationRepository() (identityUseCase.ApplicationRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for application repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return identityRepository.NewPostgreSQLApplicationRepository(db), nil
	case "mysql":
		return identityRepository.NewMySQLApplicationRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRoleRepository creates the role repository based on the database driver.
func (c *Container) initRoleRepository() (identityUseCase.RoleRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for role repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return identityRepository.NewPostgreSQLRoleRepository(db), nil
	case "mysql":
		return identityRepository.NewMySQLRoleRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initMembershipUseCase creates the membership use case with all its dependencies.
func (c *Container) initMembershipUseCase() (identityUseCase.MembershipUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for membership use case: %w", err)
	}

	membershipRepository, err := c.MembershipRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get membership repository for membership use case: %w", err)
	}

	roleRepository, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for membership use case: %w", err)
	}

	keyKeeper, err := c.KeyKeeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get key keeper for membership use case: %w", err)
	}

	events, err := c.EventEmitter()
	if err != nil {
		return nil, fmt.Errorf("failed to get event emitter for membership use case: %w", err)
	}

	baseUseCase := identityUseCase.NewMembershipUseCase(txManager, membershipRepository, roleRepository, keyKeeper, events)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for membership use case: %w", err)
		}
		return identityUseCase.NewMembershipUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initUserUseCase creates the user use case with all its dependencies.
func (c *Container) initUserUseCase() (identityUseCase.UserUseCase, error) {
	userRepository, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
	}

	roleRepository, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for user use case: %w", err)
	}

	events, err := c.EventEmitter()
	if err != nil {
		return nil, fmt.Errorf("failed to get event emitter for user use case: %w", err)
	}

	baseUseCase := identityUseCase.NewUserUseCase(userRepository, roleRepository, c.PasswordService(), events)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for user use case: %w", err)
		}
		return identityUseCase.NewUserUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initApplicationUseCase creates the application use case with all its dependencies.
func (c *Container) initApplicationUseCase() (identityUseCase.ApplicationUseCase, error) {
	applicationRepository, err := c.ApplicationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get application repository for application use case: %w", err)
	}

	roleRepository, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for application use case: %w", err)
	}

	events, err := c.EventEmitter()
	if err != nil {
		return nil, fmt.Errorf("failed to get event emitter for application use case: %w", err)
	}

	baseUseCase := identityUseCase.NewApplicationUseCase(
		applicationRepository,
		roleRepository,
		c.SecretService(),
		c.PasswordService(),
		events,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for application use case: %w", err)
		}
		return identityUseCase.NewApplicationUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initRoleUseCase creates the role use case with all its dependencies.
func (c *Container) initRoleUseCase() (identityUseCase.RoleUseCase, error) {
	roleRepository, err := c.RoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role repository for role use case: %w", err)
	}

	events, err := c.EventEmitter()
	if err != nil {
		return nil, fmt.Errorf("failed to get event emitter for role use case: %w", err)
	}

	baseUseCase := identityUseCase.NewRoleUseCase(roleRepository, events)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for role use case: %w", err)
		}
		return identityUseCase.NewRoleUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
