package mockapi

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/CLD-3rd/team2-frontend/internal/model"
)

// tokenTTL is how long issued dev tokens stay valid.
const tokenTTL = 30 * time.Minute

// Server wires the mock store into an Echo instance serving the same
// routes the production backend exposes under /api.
type Server struct {
	store  *Store
	secret string
}

// NewServer builds a mock backend with freshly seeded data.
func NewServer(secret string) *Server {
	return &Server{store: NewStore(), secret: secret}
}

// Register mounts all routes on the given Echo instance.
func (s *Server) Register(e *echo.Echo) {
	api := e.Group("/api")
	api.POST("/auth/login", s.login)
	api.POST("/user/logout", s.logout)

	// Browsing works logged out; the bearer, when present and valid,
	// only personalizes the isReserved flags.
	api.GET("/musicals", s.listMusicals, s.optionalAuth)
	api.GET("/musicals/:id", s.getMusical, s.optionalAuth)
	api.GET("/musicals/:id/seats", s.getSeats)

	authed := api.Group("", s.requireAuth)
	authed.GET("/user/me", s.me)
	authed.POST("/reservations", s.createReservation)
	authed.GET("/reservations/:id", s.getReservation)
	authed.DELETE("/reservations/:id", s.cancelReservation)
}

// Handler returns a ready-to-serve Echo instance.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	s.Register(e)
	return e
}

// login accepts any non-empty credentials and issues an HS256 token.
// The user identity is derived from the email so logins are stable
// across restarts.
func (s *Server) login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if body.Email == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}

	user := userFromEmail(body.Email)
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"nickname": user.Nickname,
		"email":    user.Email,
		"exp":      time.Now().UTC().Add(tokenTTL).Unix(),
		"iat":      time.Now().UTC().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "failed to issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": user})
}

// logout is a no-op server-side; the client drops its own token.
func (s *Server) logout(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) me(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) listMusicals(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Musicals(currentUser(c).ID))
}

func (s *Server) getMusical(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid musical id"})
	}
	m, err := s.store.Musical(id, currentUser(c).ID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "musical not found"})
	}
	return c.JSON(http.StatusOK, m)
}

func (s *Server) getSeats(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid musical id"})
	}
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "date is required"})
	}
	ids, err := s.store.ReservedSeatIDs(id, date)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "musical not found"})
	}
	type seat struct {
		SeatID string `json:"seatId"`
	}
	out := make([]seat, 0, len(ids))
	for _, sid := range ids {
		out = append(out, seat{SeatID: sid})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservedSeats": out})
}

func (s *Server) createReservation(c echo.Context) error {
	var req model.ReservationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if req.Date == "" || len(req.Seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "date and seats are required"})
	}
	// The booking is always attributed to the authenticated user,
	// whatever userId the body claims.
	req.UserID = currentUser(c).ID

	res, err := s.store.Reserve(req)
	switch {
	case errors.Is(err, ErrMusicalNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "musical not found"})
	case errors.Is(err, ErrSeatTaken):
		return c.JSON(http.StatusConflict, echo.Map{"message": "Seat already reserved. Please try again."})
	case errors.Is(err, ErrSoldOut):
		return c.JSON(http.StatusConflict, echo.Map{"message": "No seats remaining for this musical."})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "reservation failed"})
	}
	return c.JSON(http.StatusCreated, res)
}

func (s *Server) getReservation(c echo.Context) error {
	res, err := s.store.Reservation(c.Param("id"))
	if err != nil || res.UserID != currentUser(c).ID {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "reservation not found"})
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) cancelReservation(c echo.Context) error {
	if err := s.store.Cancel(c.Param("id"), currentUser(c).ID); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "reservation not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// requireAuth validates the bearer token and stores the caller's
// identity in the request context.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := s.userFromBearer(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid or missing token"})
		}
		c.Set("user", user)
		return next(c)
	}
}

// optionalAuth is requireAuth without the rejection: anonymous
// requests proceed with an empty identity.
func (s *Server) optionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if user, err := s.userFromBearer(c); err == nil {
			c.Set("user", user)
		}
		return next(c)
	}
}

func (s *Server) userFromBearer(c echo.Context) (model.User, error) {
	header := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return model.User{}, errors.New("missing bearer token")
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.secret), nil
	})
	if err != nil || !tok.Valid {
		return model.User{}, errors.New("invalid token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return model.User{}, errors.New("invalid claims")
	}
	user := model.User{}
	user.ID, _ = claims["sub"].(string)
	user.Nickname, _ = claims["nickname"].(string)
	user.Email, _ = claims["email"].(string)
	if user.ID == "" {
		return model.User{}, errors.New("missing subject")
	}
	return user, nil
}

// currentUser returns the identity placed by the auth middleware, or
// an empty user for anonymous requests.
func currentUser(c echo.Context) model.User {
	if u, ok := c.Get("user").(model.User); ok {
		return u
	}
	return model.User{}
}

// userFromEmail derives a stable dev identity from an email address.
func userFromEmail(email string) model.User {
	sum := sha256.Sum256([]byte(strings.ToLower(email)))
	nickname := email
	if at := strings.Index(email, "@"); at > 0 {
		nickname = email[:at]
	}
	return model.User{
		ID:       hex.EncodeToString(sum[:8]),
		Nickname: nickname,
		Email:    email,
	}
}
