package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Service struct {
	pool      *pgxpool.Pool
	issuer    string
	secret    []byte
	ttl       time.Duration
	denylist  *Denylist
	demoStart decimal.Decimal
	logger    zerolog.Logger
}

type User struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Phone      string     `json:"phone"`
	Country    string     `json:"country"`
	IsVerified bool       `json:"is_verified"`
	IsPremium  bool       `json:"is_premium"`
	IsAdmin    bool       `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	FullName     string
	Phone        string
	Country      string
	ReferralCode string
}

func NewService(pool *pgxpool.Pool, issuer string, secret []byte, ttl time.Duration, denylist *Denylist, demoStart decimal.Decimal, logger zerolog.Logger) *Service {
	return &Service{
		pool:      pool,
		issuer:    issuer,
		secret:    secret,
		ttl:       ttl,
		denylist:  denylist,
		demoStart: demoStart,
		logger:    logger.With().Str("component", "auth").Logger(),
	}
}

// Register creates the user together with its wallet account and
// referral code in one transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return User{}, errors.New("username, email and password are required")
	}
	var exists bool
	if err := s.pool.QueryRow(ctx, "select exists(select 1 from users where email = $1)", in.Email).Scan(&exists); err != nil {
		return User{}, err
	}
	if exists {
		return User{}, ErrEmailTaken
	}
	if err := s.pool.QueryRow(ctx, "select exists(select 1 from users where username = $1)", in.Username).Scan(&exists); err != nil {
		return User{}, err
	}
	if exists {
		return User{}, ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return User{}, err
	}
	defer tx.Rollback(ctx)
	var u User
	err = tx.QueryRow(ctx, `
		insert into users (username, email, password_hash, full_name, phone, country)
		values ($1, $2, $3, $4, $5, $6)
		returning id, username, email, coalesce(full_name, ''), coalesce(phone, ''), coalesce(country, ''), is_verified, is_premium, is_admin, created_at
	`, in.Username, in.Email, string(hash), in.FullName, in.Phone, in.Country).Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.Phone, &u.Country, &u.IsVerified, &u.IsPremium, &u.IsAdmin, &u.CreatedAt,
	)
	if err != nil {
		return User{}, err
	}
	if _, err := tx.Exec(ctx, "insert into accounts (user_id, demo_balance) values ($1, $2)", u.ID, s.demoStart); err != nil {
		return User{}, err
	}
	if _, err := tx.Exec(ctx, "insert into referrals (referrer_id, referral_code) values ($1, $2)", u.ID, newReferralCode()); err != nil {
		return User{}, err
	}
	if code := strings.ToUpper(strings.TrimSpace(in.ReferralCode)); code != "" {
		var referrerID int64
		err := tx.QueryRow(ctx, "select referrer_id from referrals where referral_code = $1", code).Scan(&referrerID)
		if err == nil && referrerID != u.ID {
			if _, err := tx.Exec(ctx, `
				insert into referrals (referrer_id, referred_user_id, status)
				values ($1, $2, 'completed')
			`, referrerID, u.ID); err != nil {
				return User{}, err
			}
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return User{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return User{}, err
	}
	s.logger.Info().Int64("user_id", u.ID).Msg("user registered")
	return u, nil
}

// Login accepts the registered email or the username as identifier.
func (s *Service) Login(ctx context.Context, identifier, password string) (string, User, error) {
	identifier = strings.TrimSpace(identifier)
	var u User
	var hash string
	err := s.pool.QueryRow(ctx, `
		select id, username, email, coalesce(full_name, ''), coalesce(phone, ''), coalesce(country, ''), is_verified, is_premium, is_admin, created_at, password_hash
		from users
		where email = lower($1) or username = $1
	`, identifier).Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Phone, &u.Country, &u.IsVerified, &u.IsPremium, &u.IsAdmin, &u.CreatedAt, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", User{}, ErrInvalidCredentials
		}
		return "", User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", User{}, ErrInvalidCredentials
	}
	if _, err := s.pool.Exec(ctx, "update users set last_login = now() where id = $1", u.ID); err != nil {
		return "", User{}, err
	}
	token, err := s.signToken(u.ID)
	if err != nil {
		return "", User{}, err
	}
	return token, u, nil
}

// Logout denylists the token for whatever validity it has left.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	parsed, err := jwt.ParseWithClaims(rawToken, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil // already unusable
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.ExpiresAt == nil {
		return nil
	}
	return s.denylist.Add(ctx, rawToken, time.Until(claims.ExpiresAt.Time))
}

func (s *Service) signToken(userID int64) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *Service) ParseToken(ctx context.Context, token string) (int64, error) {
	denied, err := s.denylist.Contains(ctx, token)
	if err != nil {
		return 0, err
	}
	if denied {
		return 0, errors.New("token revoked")
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return 0, errors.New("invalid token")
	}
	if claims.Issuer != s.issuer {
		return 0, errors.New("invalid issuer")
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, errors.New("invalid subject")
	}
	return userID, nil
}

func (s *Service) GetUser(ctx context.Context, userID int64) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		select id, username, email, coalesce(full_name, ''), coalesce(phone, ''), coalesce(country, ''), is_verified, is_premium, is_admin, created_at, last_login
		from users
		where id = $1
	`, userID).Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Phone, &u.Country, &u.IsVerified, &u.IsPremium, &u.IsAdmin, &u.CreatedAt, &u.LastLogin)
	return u, err
}

func (s *Service) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var isAdmin bool
	err := s.pool.QueryRow(ctx, "select is_admin from users where id = $1", userID).Scan(&isAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return isAdmin, err
}

func newReferralCode() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return "PIP" + strings.ToUpper(hex.EncodeToString(b))
}
