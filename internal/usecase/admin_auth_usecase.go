package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// 管理者トークンの有効期限
const AdminTokenTTL = 7 * 24 * time.Hour

const AdminRole = "admin"

type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

type AdminTokenIssuer interface {
	Issue(email string, now time.Time) (string, error)
}

// bcryptでパスワードを照合する
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(plain string, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// 平文パスワードしか設定されていないときに起動時に使う
func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// HS256で管理者トークンを発行する
type JWTAdminTokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTAdminTokenIssuer(secret string, ttl time.Duration) *JWTAdminTokenIssuer {
	if ttl <= 0 {
		ttl = AdminTokenTTL
	}
	return &JWTAdminTokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *JWTAdminTokenIssuer) Issue(email string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"role":  AdminRole,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(i.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AdminLoginResponse struct {
	Token string `json:"token"`
}

// 管理者は1アカウントだけ（設定で持つ）
type AdminAuthUsecase struct {
	email        string
	passwordHash string
	verifier     PasswordVerifier
	issuer       AdminTokenIssuer
	clock        Clock
}

func NewAdminAuthUsecase(email, passwordHash string, verifier PasswordVerifier, issuer AdminTokenIssuer, clock Clock) *AdminAuthUsecase {
	if verifier == nil {
		verifier = BcryptVerifier{}
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &AdminAuthUsecase{
		email:        strings.TrimSpace(email),
		passwordHash: passwordHash,
		verifier:     verifier,
		issuer:       issuer,
		clock:        clock,
	}
}

func (u *AdminAuthUsecase) Login(ctx context.Context, req AdminLoginRequest) (AdminLoginResponse, error) {
	if u.email == "" || u.passwordHash == "" || u.issuer == nil {
		return AdminLoginResponse{}, NewHTTPError(http.StatusInternalServerError, "Admin authentication is not configured.")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return AdminLoginResponse{}, NewHTTPError(http.StatusUnauthorized, "Invalid credentials.")
	}
	//メールとパスワードどちらが違うかは返さない
	if email != u.email || !u.verifier.Verify(req.Password, u.passwordHash) {
		return AdminLoginResponse{}, NewHTTPError(http.StatusUnauthorized, "Invalid credentials.")
	}

	token, err := u.issuer.Issue(u.email, u.clock.Now())
	if err != nil {
		return AdminLoginResponse{}, NewHTTPError(http.StatusInternalServerError, "Failed to issue token.")
	}
	return AdminLoginResponse{Token: token}, nil
}
