// Package authservice implements registration, login, and logout: the
// only code in Chacrab that ever sees the master password in the clear.
package authservice

import (
	"context"
	"crypto/subtle"

	zxcvbn "github.com/nbutton23/zxcvbn-go"

	"github.com/imadenugraha/chacrab/chacraberrors"
	"github.com/imadenugraha/chacrab/cryptoprim"
	"github.com/imadenugraha/chacrab/model"
	"github.com/imadenugraha/chacrab/repository"
	"github.com/imadenugraha/chacrab/sessionholder"
)

// minLength and minEntropyBits enforce the master-password strength
// policy; both must pass for register to accept the password.
const (
	minLength      = 12
	minEntropyBits = 40.0
)

// Service wires a [repository.Repository] to a [sessionholder.Holder] to
// implement register/login/logout. It holds no session state of its own.
type Service struct {
	repo    repository.Repository
	session sessionholder.Holder
}

func New(repo repository.Repository, session sessionholder.Holder) *Service {
	return &Service{repo: repo, session: session}
}

// Register enforces the strength policy, derives a fresh key from
// password, persists the resulting [model.AuthBootstrap], and hands the
// key to the session holder. password is zeroized before returning on
// every path.
func (s *Service) Register(ctx context.Context, password []byte) error {
	defer cryptoprim.Zero(password)

	if err := checkStrength(password); err != nil {
		return err
	}

	salt, err := cryptoprim.RandBytes(16)
	if err != nil {
		return chacraberrors.ErrKdf
	}

	kdf := cryptoprim.NewArgon2idKDF(cryptoprim.WithSalt(salt))

	key := kdf.Derive(password)
	defer cryptoprim.Zero(key)

	// The verifier stores SHA-256(key), never key itself: key is the
	// encryption key handed to the session holder, and must not be
	// reconstructable from anything persisted.
	verifierHash := cryptoprim.Sum256(key)

	phc := kdf.PHC()
	phc.Salt = salt
	phc.Hash = verifierHash[:]

	bootstrap := model.AuthBootstrap{
		Salt:     salt,
		Verifier: phc.String(),
		KDFParams: model.KDFParams{
			MemoryKiB:   phc.Memory,
			Iterations:  phc.Time,
			Parallelism: phc.Parallelism,
		},
	}

	if err := s.repo.SaveAuth(ctx, bootstrap); err != nil {
		return err
	}

	if err := s.session.Put(ctx, key); err != nil {
		return err
	}

	return nil
}

// Login loads the stored bootstrap, re-derives the key using the stored
// KDF parameters, and constant-time compares against the stored verifier.
// password is zeroized before returning on every path.
func (s *Service) Login(ctx context.Context, password []byte) error {
	defer cryptoprim.Zero(password)

	bootstrap, err := s.repo.LoadAuth(ctx)
	if err != nil {
		return err
	}

	if bootstrap == nil {
		return chacraberrors.ErrNotRegistered
	}

	phc, err := cryptoprim.DecodeAragon2idPHC(bootstrap.Verifier)
	if err != nil {
		return chacraberrors.ErrKdf
	}

	kdf := cryptoprim.NewArgon2idKDF(
		cryptoprim.WithSalt(phc.Salt),
		cryptoprim.WithParams(phc.Argon2Params),
		cryptoprim.WithVersion(phc.Version),
	)

	candidate := kdf.Derive(password)

	candidateVerifier := cryptoprim.Sum256(candidate)

	if subtle.ConstantTimeCompare(candidateVerifier[:], phc.Hash) != 1 {
		cryptoprim.Zero(candidate)
		return chacraberrors.ErrBadPassword
	}

	defer cryptoprim.Zero(candidate)

	return s.session.Put(ctx, candidate)
}

// Logout purges the held key. Idempotent.
func (s *Service) Logout(ctx context.Context) error {
	return s.session.Clear(ctx)
}

func checkStrength(password []byte) error {
	if len(password) < minLength {
		return chacraberrors.ErrWeakMasterPassword
	}

	strength := zxcvbn.PasswordStrength(string(password), nil)
	if strength.Entropy < minEntropyBits {
		return chacraberrors.ErrWeakMasterPassword
	}

	return nil
}
