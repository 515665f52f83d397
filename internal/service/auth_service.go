package service

import (
	"errors"
	"fmt"
	"time"

	"emergency-response-backend/internal/apperrors"
	"emergency-response-backend/internal/models"
	"emergency-response-backend/pkg/utils"
)

type UserStore interface {
	FindUserByUsername(username string) (*models.User, error)
	CreateUser(user *models.User) error
	CreateRefreshToken(token *models.RefreshToken) error
	FindRefreshTokenByHash(hash string) (*models.RefreshToken, error)
	RevokeRefreshTokenByHash(hash string) error
}

type AuthService struct {
	userStore     UserStore
	hospitalStore HospitalStore
	auditStore    AuditStore
}

func NewAuthService(userStore UserStore, hospitalStore HospitalStore, auditStore AuditStore) *AuthService {
	return &AuthService{
		userStore:     userStore,
		hospitalStore: hospitalStore,
		auditStore:    auditStore,
	}
}

// LoginResponse represents the response structure for login
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	HospitalID  *uint  `json:"hospital_id,omitempty"`
	AmbulanceID *uint  `json:"ambulance_id,omitempty"`
}

// Login authenticates an account and returns tokens
func (s *AuthService) Login(username, password string) (*LoginResponse, error) {
	user, err := s.userStore.FindUserByUsername(username)
	if err != nil {
		return nil, errors.New("invalid credentials")
	}

	if !utils.ComparePassword(user.PasswordHash, password) {
		return nil, errors.New("invalid credentials")
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Role, user.HospitalID, user.AmbulanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	tokenHash := utils.HashRefreshToken(refreshToken)
	refreshTokenModel := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(utils.GetRefreshTokenExpiry()),
	}
	if err := s.userStore.CreateRefreshToken(refreshTokenModel); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	if user.Role == "hospital" && user.HospitalID != nil {
		_ = s.hospitalStore.TouchLastLogin(*user.HospitalID)
	}

	userIDPtr := &user.ID
	_ = s.auditStore.CreateAuditLog(userIDPtr, "user_login", fmt.Sprintf("User %s logged in", username))

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: UserResponse{
			ID:          user.ID,
			Username:    user.Username,
			Role:        user.Role,
			HospitalID:  user.HospitalID,
			AmbulanceID: user.AmbulanceID,
		},
	}, nil
}

// RefreshAccessToken generates a new access token from a refresh token
func (s *AuthService) RefreshAccessToken(refreshToken string) (string, error) {
	tokenHash := utils.HashRefreshToken(refreshToken)

	token, err := s.userStore.FindRefreshTokenByHash(tokenHash)
	if err != nil {
		return "", errors.New("invalid or revoked refresh token")
	}

	if time.Now().After(token.ExpiresAt) {
		return "", errors.New("refresh token expired")
	}

	accessToken, err := utils.GenerateAccessToken(token.User.ID, token.User.Role, token.User.HospitalID, token.User.AmbulanceID)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessToken, nil
}

// Logout revokes a refresh token
func (s *AuthService) Logout(refreshToken string) error {
	tokenHash := utils.HashRefreshToken(refreshToken)
	if err := s.userStore.RevokeRefreshTokenByHash(tokenHash); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// Register creates a new account. Hospital accounts must reference a
// hospital, driver accounts an ambulance.
func (s *AuthService) Register(username, password, role string, hospitalID, ambulanceID *uint) (*UserResponse, error) {
	switch role {
	case "hospital":
		if hospitalID == nil {
			return nil, apperrors.NewValidation("hospital_id", "required for hospital accounts")
		}
	case "driver":
		if ambulanceID == nil {
			return nil, apperrors.NewValidation("ambulance_id", "required for driver accounts")
		}
	case "police", "admin":
	default:
		return nil, apperrors.NewValidation("role", "must be one of hospital, police, driver, admin")
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		HospitalID:   hospitalID,
		AmbulanceID:  ambulanceID,
	}
	if err := s.userStore.CreateUser(user); err != nil {
		return nil, err
	}

	userIDPtr := &user.ID
	_ = s.auditStore.CreateAuditLog(userIDPtr, "user_registration", fmt.Sprintf("User %s registered as %s", username, role))

	return &UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Role:        user.Role,
		HospitalID:  user.HospitalID,
		AmbulanceID: user.AmbulanceID,
	}, nil
}
