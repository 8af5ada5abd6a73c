package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL vigencia de un token cuando la configuración no indica otra.
const DefaultTTL = 24 * time.Hour

// Errores de verificación. Se distinguen internamente (logs/métricas);
// la capa HTTP decide cuánto revelar al cliente.
var (
	ErrMalformed        = errors.New("jwt: token malformado")
	ErrInvalidSignature = errors.New("jwt: firma inválida")
	ErrExpired          = errors.New("jwt: token expirado")
)

// Claims claim set firmado: sub (id del usuario), role, iat, exp (+ iss opcional).
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Config parámetros del servicio de tokens. El secreto se inyecta al construir;
// no hay estado global.
type Config struct {
	Secret string
	TTL    time.Duration
	Issuer string
	// Now reloj usado para iat/exp y para verificar; nil = time.Now.
	Now func() time.Time
}

// Service emite y verifica tokens HS256. Es inmutable y seguro entre goroutines.
type Service struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// NewService valida la configuración y construye el servicio.
func NewService(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if ttl < 0 {
		return nil, fmt.Errorf("jwt: TTL debe ser positivo (%s)", ttl)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    now,
		// La validación temporal se hace a mano en Verify (now > exp => expirado).
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// TTL vigencia configurada de los tokens emitidos.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue genera un token firmado con sub=principalID, role, iat=now, exp=now+TTL.
func (s *Service) Issue(principalID, role string) (string, error) {
	token, _, err := s.IssueClaims(principalID, role)
	return token, err
}

// IssueClaims como Issue, devolviendo también el claim set firmado.
func (s *Service) IssueClaims(principalID, role string) (string, *Claims, error) {
	if principalID == "" {
		return "", nil, fmt.Errorf("jwt: principalID vacío")
	}
	now := s.now().Truncate(time.Second)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   principalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("jwt: firmar: %w", err)
	}
	return signed, claims, nil
}

// Verify comprueba estructura, firma y vigencia, y devuelve el claim set.
//
// La firma se comprueba sobre los segmentos crudos antes de decodificar nada,
// de modo que cualquier alteración del payload da ErrInvalidSignature aunque
// deje el segmento ilegible.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, ErrMalformed
	}
	sig, err := s.parser.DecodeSegment(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: firma ilegible", ErrMalformed)
	}
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, s.secret); err != nil {
		return nil, ErrInvalidSignature
	}

	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			// alg distinto de HS256 en el header
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !token.Valid {
		return nil, ErrInvalidSignature
	}

	if claims.Subject == "" || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: faltan claims obligatorios", ErrMalformed)
	}
	if !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		return nil, fmt.Errorf("%w: exp debe ser posterior a iat", ErrMalformed)
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, fmt.Errorf("%w: emisor inesperado %q", ErrMalformed, claims.Issuer)
	}
	if s.now().After(claims.ExpiresAt.Time) {
		return nil, ErrExpired
	}
	return claims, nil
}
