package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"ferreteria_server/database"
	"ferreteria_server/lib"
	"ferreteria_server/structs"
	"ferreteria_server/structs/tables"
	"fmt"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

// DefaultParams are used for new hashes. Stored hashes with other parameters
// are upgraded at the next successful login.
var DefaultParams = &structs.ArgonParams{
	Memory:  64 * 1024, // 64 MB
	Time:    1,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

var (
	ErrInvalidHash         = errors.New("invalid password hash")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// UserStore looks up clerk accounts
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*tables.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type AuthService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	users  UserStore
	params *structs.ArgonParams
}

func NewAuthService(cfg *structs.Config, logger *gecho.Logger, users UserStore) *AuthService {
	return &AuthService{
		logger: logger,
		cfg:    cfg,
		users:  users,
		params: DefaultParams,
	}
}

// Login verifies the credentials. Any failure other than an infrastructure
// error is reported as lib.ErrInvalidCredentials so account existence never leaks.
func (as *AuthService) Login(ctx context.Context, authRequest *structs.AuthRequest) (*tables.User, error) {
	startTime := time.Now()
	user, err := as.users.FindUserByEmail(ctx, authRequest.Email)
	if err != nil {
		as.logger.Error("Unexpected database error during login",
			gecho.Field("identifier", authRequest.Email),
			gecho.Field("error", err),
		)
		return nil, lib.ErrInvalidCredentials
	}

	if user == nil {
		as.logger.Debug("User not found during login attempt", gecho.Field("identifier", authRequest.Email))
		return nil, lib.ErrInvalidCredentials
	}

	valid, stored, err := as.verifyPassword(authRequest.Password, user.PasswordHash)
	if err != nil {
		as.logger.Error("Failed to verify password hash",
			gecho.Field("error", err),
			gecho.Field("user_id", user.Id),
		)
		return nil, lib.ErrInvalidCredentials
	}
	if !valid {
		as.logger.Debug("Invalid password attempt",
			gecho.Field("identifier", authRequest.Email),
			gecho.Field("user_id", user.Id),
		)
		return nil, lib.ErrInvalidCredentials
	}

	if *stored != *as.params {
		as.upgradeHash(ctx, user.Id, authRequest.Password)
	}

	if err := as.users.TouchLastLogin(ctx, user.Id, time.Now()); err != nil {
		as.logger.Warn("Failed to update last login", gecho.Field("error", err), gecho.Field("user_id", user.Id))
	}

	as.logger.Debug("User logged in successfully",
		gecho.Field("user_id", user.Id),
		gecho.Field("elapsed_time_ms", time.Since(startTime).Milliseconds()),
	)

	// Remove password hash before returning user
	user.PasswordHash = ""
	return user, nil
}

// HashPassword hashes a plain-text password and returns a string and possible error
func (as *AuthService) HashPassword(password string, p *structs.ArgonParams) (string, error) {
	salt, err := generateSalt(p.SaltLen)
	if err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)
	// format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	params := fmt.Sprintf("m=%d,t=%d,p=%d", p.Memory, p.Time, p.Threads)
	return fmt.Sprintf("$argon2id$v=%d$%s$%s$%s", argon2.Version, params, b64Salt, b64Hash), nil
}

func generateSalt(n uint32) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// VerifyPassword verifies a plain-text password against a hashed password
func (as *AuthService) VerifyPassword(password, hashedPassword string) (bool, error) {
	valid, _, err := as.verifyPassword(password, hashedPassword)
	return valid, err
}

func (as *AuthService) verifyPassword(password, hashedPassword string) (bool, *structs.ArgonParams, error) {
	p, salt, want, err := decodeArgon2Hash(hashedPassword)
	if err != nil {
		return false, nil, err
	}
	got := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return lib.SecureCompare(got, want), p, nil
}

// upgradeHash rehashes with the current parameters; failure keeps the old hash
func (as *AuthService) upgradeHash(ctx context.Context, userID uuid.UUID, password string) {
	hash, err := as.HashPassword(password, as.params)
	if err != nil {
		as.logger.Warn("Failed to rehash password", gecho.Field("error", err), gecho.Field("user_id", userID))
		return
	}
	if err := as.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		as.logger.Warn("Failed to store upgraded password hash", gecho.Field("error", err), gecho.Field("user_id", userID))
		return
	}
	as.logger.Info("Password hash upgraded", gecho.Field("user_id", userID))
}

// decodeArgon2Hash reads $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>. The
// returned params carry the salt and key lengths found in the hash.
func decodeArgon2Hash(encoded string) (*structs.ArgonParams, []byte, []byte, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" {
		return nil, nil, nil, ErrInvalidHash
	}
	if fields[1] != "argon2id" {
		return nil, nil, nil, fmt.Errorf("%w: variant %q", ErrInvalidHash, fields[1])
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("%w: v=%d", ErrIncompatibleVersion, version)
	}

	p := &structs.ArgonParams{}
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil || len(salt) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: salt", ErrInvalidHash)
	}
	hash, err := base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil || len(hash) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: key", ErrInvalidHash)
	}

	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(hash))
	return p, salt, hash, nil
}

// GenerateAccessToken issues the access token binding the user to a session
func (as *AuthService) GenerateAccessToken(user *tables.User, sessionID uuid.UUID) (string, *structs.AuthClaims, error) {
	claims := &structs.AuthClaims{
		Sub:   user.Id,
		Email: user.Email,
		Role:  user.Role,
		Iat:   time.Now(),
		Exp:   as.GetAccessTokenExpiration(),
		Jti:   uuid.New(),
		Sid:   sessionID,
	}

	token, err := lib.SignToken(claims, as.cfg.Auth.AccessTokenSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, claims, nil
}

// GetAccessTokenExpiration returns the expiration time for access tokens
func (as *AuthService) GetAccessTokenExpiration() time.Time {
	return time.Now().Add(as.cfg.Auth.AccessTokenExpiry)
}

func (as *AuthService) GetAccessTokenSecret() string {
	return as.cfg.Auth.AccessTokenSecret
}

// UserService is the bun-backed UserStore
type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

func (us *UserService) FindUserByEmail(ctx context.Context, email string) (*tables.User, error) {
	user, err := database.Query[tables.User](us.db).Where("u.email", email).First(ctx)
	if err != nil {
		return nil, lib.MapDBError(err)
	}
	return user, nil
}

func (us *UserService) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := database.UpdateByID[tables.User](us.db, ctx, "u.id", id, map[string]any{"last_login": at})
	return lib.MapDBError(err)
}

func (us *UserService) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	_, err := database.UpdateByID[tables.User](us.db, ctx, "u.id", id, map[string]any{"password_hash": hash})
	return lib.MapDBError(err)
}
