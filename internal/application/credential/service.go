// Package credential implements the credential vault use cases: the
// subscription-gated save, revocation after an upstream rejection, the
// delete cascade and decryption for the sync pass.
package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sellerstats/backend/internal/application/unitofwork"
	"github.com/sellerstats/backend/internal/domain/credential"
	"github.com/sellerstats/backend/internal/domain/marketplace"
	"github.com/sellerstats/backend/internal/domain/shared"
	"github.com/sellerstats/backend/internal/domain/subscription"
)

// ActivationDecider runs the subscription policy on a ledger of the
// caller's unit of work
type ActivationDecider interface {
	DecideActivation(ctx context.Context, ledger subscription.Ledger, userID int64) (subscription.Activation, error)
}

// Service implements the credential vault operations
type Service struct {
	uow    unitofwork.Factory
	cipher credential.Cipher
	gate   ActivationDecider
	client marketplace.Client
	logger *zap.Logger
}

// NewService creates a new credential Service
func NewService(
	uow unitofwork.Factory,
	cipher credential.Cipher,
	gate ActivationDecider,
	client marketplace.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		uow:    uow,
		cipher: cipher,
		gate:   gate,
		client: client,
		logger: logger.Named("credential_service"),
	}
}

// ValidateFormat performs the offline shape check of a raw key
func (s *Service) ValidateFormat(raw string) error {
	return credential.ValidateKeyFormat(raw)
}

// Verify asks the marketplace whether the raw key is accepted
func (s *Service) Verify(ctx context.Context, raw string) error {
	if err := s.client.Ping(ctx, strings.TrimSpace(raw)); err != nil {
		return fmt.Errorf("verify key: %w", err)
	}
	return nil
}

// SaveWithSubscriptionCheck encrypts and stores the key under title. The
// activation decision and the upsert share one unit of work, so the stored
// active flag always reflects the branch taken. When the key is saved active
// every other credential of the user is deactivated.
func (s *Service) SaveWithSubscriptionCheck(ctx context.Context, userID int64, title, raw string) (subscription.Activation, error) {
	raw = strings.TrimSpace(raw)
	if err := credential.ValidateKeyFormat(raw); err != nil {
		return subscription.ActivationInactive, err
	}
	if title = strings.TrimSpace(title); title == "" {
		title = credential.DefaultTitle
	}

	sealed, err := s.cipher.Encrypt([]byte(raw))
	if err != nil {
		s.logger.Error("Failed to encrypt credential", zap.Int64("user_id", userID), zap.Error(err))
		return subscription.ActivationInactive, fmt.Errorf("encrypt credential: %w", err)
	}

	activation := subscription.ActivationInactive
	err = unitofwork.Run(ctx, s.uow, func(repos unitofwork.Repositories) error {
		exists, err := repos.Users().ExistsByID(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.ErrNotFound
		}

		decided, err := s.gate.DecideActivation(ctx, repos.Subscriptions(), userID)
		if err != nil {
			return err
		}

		c, err := credential.NewCredential(userID, title, sealed, decided.CredentialActive())
		if err != nil {
			return err
		}
		if err := repos.Credentials().Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert credential: %w", err)
		}
		if c.IsActive {
			if _, err := repos.Credentials().DeactivateOthers(ctx, userID, c.Title); err != nil {
				return fmt.Errorf("deactivate other credentials: %w", err)
			}
		}

		activation = decided
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to save credential",
			zap.Int64("user_id", userID),
			zap.String("title", title),
			zap.Error(err),
		)
		return subscription.ActivationInactive, err
	}

	s.logger.Info("Credential saved",
		zap.Int64("user_id", userID),
		zap.String("title", title),
		zap.Stringer("activation", activation),
	)
	return activation, nil
}

// GetActiveCredential returns the user's active credential, still sealed.
// Returns shared.ErrNotFound when there is none.
func (s *Service) GetActiveCredential(ctx context.Context, userID int64) (*credential.Credential, error) {
	var found *credential.Credential
	err := unitofwork.Run(ctx, s.uow, func(repos unitofwork.Repositories) error {
		c, err := repos.Credentials().FindActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		found = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// GetDecryptedByTitle returns the plaintext of the user's active credential
// with the given title
func (s *Service) GetDecryptedByTitle(ctx context.Context, userID int64, title string) (string, error) {
	var sealed string
	err := unitofwork.Run(ctx, s.uow, func(repos unitofwork.Repositories) error {
		c, err := repos.Credentials().FindByTitle(ctx, userID, title)
		if err != nil {
			return err
		}
		sealed = c.Ciphertext
		return nil
	})
	if err != nil {
		return "", err
	}
	return s.Open(sealed)
}

// Open decrypts a sealed credential. Failures wrap credential.ErrDecryption.
func (s *Service) Open(ciphertext string) (string, error) {
	plain, err := s.cipher.Decrypt(ciphertext)
	if err != nil {
		s.logger.Warn("Failed to decrypt credential", zap.Error(err))
		if !errors.Is(err, credential.ErrDecryption) {
			err = fmt.Errorf("%w: %v", credential.ErrDecryption, err)
		}
		return "", err
	}
	return string(plain), nil
}

// HandleUnauthorized deactivates every credential of the user after the
// marketplace rejected its key. It reports whether anything changed.
func (s *Service) HandleUnauthorized(ctx context.Context, userID int64) (bool, error) {
	var changed bool
	err := unitofwork.Run(ctx, s.uow, func(repos unitofwork.Repositories) error {
		var err error
		changed, err = repos.Credentials().DeactivateAllForUser(ctx, userID)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to deactivate credentials", zap.Int64("user_id", userID), zap.Error(err))
		return false, err
	}
	if changed {
		s.logger.Info("Credentials deactivated after upstream rejection", zap.Int64("user_id", userID))
	}
	return changed, nil
}

// DeleteAllForUser removes the user's credentials, then delegates, then task
// statuses, in one unit of work
func (s *Service) DeleteAllForUser(ctx context.Context, userID int64) error {
	err := unitofwork.Run(ctx, s.uow, func(repos unitofwork.Repositories) error {
		exists, err := repos.Users().ExistsByID(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.ErrNotFound
		}

		if _, err := repos.Credentials().DeleteAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("delete credentials: %w", err)
		}
		if _, err := repos.Delegates().DeleteAllForOwner(ctx, userID); err != nil {
			return fmt.Errorf("delete delegates: %w", err)
		}
		if _, err := repos.TaskStatuses().DeleteAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("delete task statuses: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to delete user credentials", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}

	s.logger.Info("User credentials deleted", zap.Int64("user_id", userID))
	return nil
}

// ListSyncTargets returns the active credentials of active users
func (s *Service) ListSyncTargets(ctx context.Context) ([]credential.SyncTarget, error) {
	var targets []credential.SyncTarget
	err := unitofwork.Run(ctx, s.uow, func(repos unitofwork.Repositories) error {
		var err error
		targets, err = repos.Credentials().ListSyncTargets(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list sync targets: %w", err)
	}
	return targets, nil
}
