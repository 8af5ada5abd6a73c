package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/cupones-api/internal/application/dto"
	"github.com/jhoicas/cupones-api/internal/domain"
	"github.com/jhoicas/cupones-api/internal/domain/entity"
	"github.com/jhoicas/cupones-api/internal/domain/repository"
	"github.com/jhoicas/cupones-api/pkg/jwt"
	"github.com/jhoicas/cupones-api/pkg/password"
)

// TokenIssuer emite tokens firmados (pkg/jwt.Service).
type TokenIssuer interface {
	IssueClaims(principalID, role string) (string, *jwt.Claims, error)
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	tokens      TokenIssuer
	now         func() time.Time
}

// WithClock reemplaza el reloj usado para CreatedAt/UpdatedAt (tests).
func (uc *AuthUseCase) WithClock(now func() time.Time) *AuthUseCase {
	uc.now = now
	return uc
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, companyRepo repository.CompanyRepository, tokens TokenIssuer) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, companyRepo: companyRepo, tokens: tokens, now: time.Now}
}

// Register crea un usuario con rol user en una empresa activa, hashea la password
// y devuelve un token ya emitido. ErrEmailAlreadyExists si el email existe.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	in.Email = entity.NormalizeEmail(in.Email)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	email := in.Email

	company, err := uc.companyRepo.GetByID(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil || !company.Active {
		return nil, fmt.Errorf("%w: empresa inexistente o inactiva", domain.ErrInvalidInput)
	}

	existing, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    company.ID,
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// La unicidad real la garantiza el almacén (carrera entre dos registros).
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return uc.session(user)
}

var (
	dummyOnce   sync.Once
	dummyDigest string
)

// dummyVerify iguala el costo de un login con email inexistente al de una password errónea.
func dummyVerify(plaintext string) {
	dummyOnce.Do(func() {
		dummyDigest, _ = password.Hash("cupones-api-dummy-password")
	})
	_ = password.Verify(plaintext, dummyDigest)
}

// Login verifica email/password y emite un token. No distingue email inexistente
// de password incorrecta. Una cuenta inactiva con credenciales válidas da ErrAccountDisabled.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error) {
	in.Email = entity.NormalizeEmail(in.Email)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	user, err := uc.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		dummyVerify(in.Password)
		return nil, domain.ErrInvalidCredentials
	}
	if !password.Verify(in.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrAccountDisabled
	}
	return uc.session(user)
}

func (uc *AuthUseCase) session(user *entity.User) (*dto.AuthResponse, error) {
	token, claims, err := uc.tokens.IssueClaims(user.ID, user.Role.String())
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
		User:      ToUserResponse(user),
	}, nil
}

// ToUserResponse proyección de salida de un usuario (nunca incluye el hash).
func ToUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role.String(),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToPrincipalResponse proyección de salida del principal de la petición.
func ToPrincipalResponse(p *Principal) dto.PrincipalResponse {
	return dto.PrincipalResponse{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Role:      p.Role.String(),
		CompanyID: p.CompanyID,
	}
}
