package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/parcels"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("tracking token is invalid")
	ErrTokenExpired = errors.New("tracking token has expired")
)

const defaultTokenTTL = 30 * 24 * time.Hour

// trackingClaims scopes a token to one parcel code. Tokens are shared with
// recipients, so they carry no seller or account data.
type trackingClaims struct {
	ParcelCode string `json:"parcel_code"`
	jwt.RegisteredClaims
}

// PublicStatus is the recipient-facing view of a parcel: no price, no seller
// internals.
type PublicStatus struct {
	Code        string              `json:"code"`
	Status      models.ParcelStatus `json:"status"`
	City        string              `json:"city,omitempty"`
	DeliveredAt *time.Time          `json:"delivered_at,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type Service struct {
	parcels *parcels.Service
	secret  []byte
	ttl     time.Duration
}

func NewService(parcelService *parcels.Service, cfg *models.TrackingConfig) *Service {
	ttl := defaultTokenTTL
	if cfg.TokenTTLHours > 0 {
		ttl = time.Duration(cfg.TokenTTLHours) * time.Hour
	}
	return &Service{
		parcels: parcelService,
		secret:  []byte(cfg.SigningSecret),
		ttl:     ttl,
	}
}

// IssueToken signs a tracking link token for a parcel code.
func (s *Service) IssueToken(parcelCode string) (string, error) {
	now := time.Now()
	claims := trackingClaims{
		ParcelCode: parcelCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "delivery-tracking",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign tracking token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a tracking token and returns the parcel code it was
// issued for.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &trackingClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*trackingClaims)
	if !ok || claims.ParcelCode == "" {
		return "", ErrInvalidToken
	}
	return claims.ParcelCode, nil
}

// Track resolves a token to the public status of its parcel.
func (s *Service) Track(ctx context.Context, tokenString string) (*PublicStatus, error) {
	code, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	parcel, err := s.parcels.GetParcelByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	status := &PublicStatus{
		Code:        parcel.Code,
		Status:      parcel.Status,
		DeliveredAt: parcel.DeliveredAt,
		UpdatedAt:   parcel.UpdatedAt,
	}
	if parcel.City != nil {
		status.City = parcel.City.Name
	}
	return status, nil
}
