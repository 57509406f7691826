// Copyright (c) 2026 theNeighbourhood. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the auth package's TokenProvider interface.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside a JWT Access Token.
//
// # Why custom claims?
//
// By embedding the UserID, Username, Email, and display fields directly
// inside the JWT, the Authenticate middleware can reconstruct the active
// user context WITHOUT querying the database on every single API request.
// The identity embedded in the token is trusted until expiry.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID    string `json:"uid"`
	Username  string `json:"unm"`
	Email     string `json:"eml"`
	FirstName string `json:"fnm,omitempty"`
	LastName  string `json:"lnm,omitempty"`
}

// refreshClaims is the minimal payload of a refresh token. Only the username
// travels in it; everything else is re-read from the database on refresh.
type refreshClaims struct {
	jwt.RegisteredClaims

	Username string `json:"unm"`
}

// TokenService handles generation and verification of JWT tokens using HS256.
//
// Access and refresh tokens are signed with independent secrets (JWT_SECRET
// and JWT_REFRESH_SECRET), so neither token class verifies under the other's
// key.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenService creates a new TokenService from the configured secrets.
func NewTokenService(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("sec: token secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("sec: access and refresh secrets must differ")
	}

	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// AccessTokenTTL returns the configured access token lifetime.
func (service *TokenService) AccessTokenTTL() time.Duration { return service.accessTTL }

// RefreshTokenTTL returns the configured refresh token lifetime.
func (service *TokenService) RefreshTokenTTL() time.Duration { return service.refreshTTL }

// GenerateAccessToken creates a short-lived JWT embedding the user's identity
// and display profile.
func (service *TokenService) GenerateAccessToken(userID, username, email, firstName, lastName string) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.accessTTL)),
		},
		UserID:    userID,
		Username:  username,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign access token: %w", err)
	}

	return signedToken, nil
}

// GenerateRefreshToken creates a long-lived JWT carrying only the username.
func (service *TokenService) GenerateRefreshToken(username string) (string, error) {
	currentTime := time.Now()
	claims := refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.refreshTTL)),
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign refresh token: %w", err)
	}

	return signedToken, nil
}

// VerifyAccessToken checks the signature and validity of an access token string.
func (service *TokenService) VerifyAccessToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.accessSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid access token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid access token claims")
	}

	return claims, nil
}

// VerifyRefreshToken checks a refresh token and returns the embedded username.
func (service *TokenService) VerifyRefreshToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &refreshClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.refreshSecret, nil
	})

	if err != nil {
		return "", fmt.Errorf("sec: invalid refresh token: %w", err)
	}

	claims, ok := token.Claims.(*refreshClaims)
	if !ok || !token.Valid {
		return "", errors.New("sec: invalid refresh token claims")
	}

	return claims.Username, nil
}
