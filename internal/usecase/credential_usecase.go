package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/metrics"
)

// CredentialUseCase handles registration, login and profile changes.
type CredentialUseCase struct {
	userRepo  UserRepository
	sessions  SessionStore
	hasher    PasswordHasher
	tokens    TokenIssuer
	idGen     IDGenerator
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// CredentialDeps groups the collaborators of CredentialUseCase.
type CredentialDeps struct {
	UserRepo  UserRepository
	Sessions  SessionStore
	Hasher    PasswordHasher
	Tokens    TokenIssuer
	IDGen     IDGenerator
	Publisher EventPublisher
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
}

// NewCredentialUseCase creates a new CredentialUseCase.
func NewCredentialUseCase(deps CredentialDeps) *CredentialUseCase {
	return &CredentialUseCase{
		userRepo:  deps.UserRepo,
		sessions:  deps.Sessions,
		hasher:    deps.Hasher,
		tokens:    deps.Tokens,
		idGen:     deps.IDGen,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

// Register creates a credential record with a fresh stable id.
func (uc *CredentialUseCase) Register(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := uc.register(ctx, username, password)
	uc.recordAttempt("register", err)
	if err != nil {
		return nil, err
	}

	uc.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")

	publishEvent(ctx, uc.publisher, uc.logger, domain.Event{
		Type:    domain.EventTypeUserRegistered,
		OwnerID: user.ID,
		Payload: domain.UserRegisteredEvent{UserID: user.ID, Username: user.Username},
	})

	return user, nil
}

func (uc *CredentialUseCase) register(ctx context.Context, username, password string) (*domain.User, error) {
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}

	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := uc.userRepo.GetByUsername(ctx, username)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrDuplicateUser
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uc.idGen.Generate(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Create fails with ErrDuplicateUser on a concurrent registration.
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.UsersCreated.Inc()
	}

	return withoutHash(user), nil
}

// Verify reports whether password matches the stored credential of username.
func (uc *CredentialUseCase) Verify(ctx context.Context, username, password string) (bool, error) {
	_, err := uc.authenticate(ctx, username, password)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrInvalidCredentials):
		return false, nil
	default:
		return false, err
	}
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	User  *domain.User
	Token string
}

// Login verifies the credentials, remembers the user as the current session
// user and issues a bearer token.
func (uc *CredentialUseCase) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	result, err := uc.login(ctx, username, password)
	uc.recordAttempt("login", err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *CredentialUseCase) login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := uc.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := uc.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	if uc.sessions != nil {
		if err := uc.sessions.SetCurrentUser(ctx, user.Username); err != nil {
			return nil, err
		}
	}

	return &LoginResult{User: withoutHash(user), Token: token}, nil
}

// Logout forgets the current session user.
func (uc *CredentialUseCase) Logout(ctx context.Context) error {
	if uc.sessions == nil {
		return nil
	}
	return uc.sessions.ClearCurrentUser(ctx)
}

// CurrentUser returns the last authenticated username, or "".
func (uc *CredentialUseCase) CurrentUser(ctx context.Context) (string, error) {
	if uc.sessions == nil {
		return "", nil
	}
	return uc.sessions.CurrentUser(ctx)
}

// GetUser retrieves a user by its stable id.
func (uc *CredentialUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return withoutHash(user), nil
}

// UpdateProfileInput represents a username and/or password change.
type UpdateProfileInput struct {
	UserID          string
	CurrentPassword string
	NewUsername     string
	// NewPassword keeps the current password when empty.
	NewPassword     string
	ConfirmPassword string
}

// UpdateProfile renames the user and optionally changes the password. The
// ledger is owned by the stable user id, so a rename leaves it in place.
func (uc *CredentialUseCase) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*domain.User, error) {
	user, oldUsername, err := uc.updateProfile(ctx, input)
	uc.recordAttempt("update_profile", err)
	if err != nil {
		return nil, err
	}

	if oldUsername != user.Username {
		uc.followRename(ctx, oldUsername, user.Username)

		publishEvent(ctx, uc.publisher, uc.logger, domain.Event{
			Type:    domain.EventTypeUserRenamed,
			OwnerID: user.ID,
			Payload: domain.UserRenamedEvent{
				UserID:      user.ID,
				OldUsername: oldUsername,
				NewUsername: user.Username,
			},
		})
	}

	return user, nil
}

func (uc *CredentialUseCase) updateProfile(ctx context.Context, input UpdateProfileInput) (*domain.User, string, error) {
	if input.NewPassword != input.ConfirmPassword {
		return nil, "", domain.ErrPasswordMismatch
	}

	user, err := uc.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, "", err
	}

	if err := uc.hasher.Compare(user.PasswordHash, input.CurrentPassword); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	oldUsername := user.Username
	newUsername := input.NewUsername
	if newUsername == "" {
		newUsername = oldUsername
	}

	if newUsername != oldUsername {
		if err := domain.ValidateUsername(newUsername); err != nil {
			return nil, "", err
		}

		other, err := uc.userRepo.GetByUsername(ctx, newUsername)
		switch {
		case err == nil && other != nil && other.ID != user.ID:
			return nil, "", domain.ErrDuplicateUser
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return nil, "", err
		}
	}

	user.Username = newUsername

	if input.NewPassword != "" {
		if err := domain.ValidatePassword(input.NewPassword); err != nil {
			return nil, "", err
		}
		hash, err := uc.hasher.Hash(input.NewPassword)
		if err != nil {
			return nil, "", err
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = time.Now().UTC()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, "", err
	}

	return withoutHash(user), oldUsername, nil
}

// followRename keeps the session pointing at the renamed user.
func (uc *CredentialUseCase) followRename(ctx context.Context, oldUsername, newUsername string) {
	if uc.sessions == nil {
		return
	}

	current, err := uc.sessions.CurrentUser(ctx)
	if err != nil || current != oldUsername {
		return
	}

	if err := uc.sessions.SetCurrentUser(ctx, newUsername); err != nil {
		uc.logger.Warn().Err(err).Str("username", newUsername).Msg("failed to update current user after rename")
	}
}

func (uc *CredentialUseCase) authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := uc.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

func (uc *CredentialUseCase) recordAttempt(action string, err error) {
	if uc.metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	uc.metrics.AuthAttempts.WithLabelValues(action, status).Inc()
}

// Don't hand password hashes to callers.
func withoutHash(user *domain.User) *domain.User {
	out := *user
	out.PasswordHash = ""
	return &out
}
