package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// TicketService mints and checks the signed rejoin tickets handed out in
// welcome messages. A valid ticket lets a reconnecting client reclaim its
// seat by id instead of relying on display-name matching.
type TicketService struct {
	ticketSecret string
	ticketIssuer string
	ticketTTL    time.Duration
}

// TicketClaims is the verified content of a rejoin ticket.
type TicketClaims struct {
	RoomID   string
	PlayerID string
	Name     string
}

func NewTicketService(secret, issuer string, ttl time.Duration) *TicketService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TicketService{
		ticketSecret: secret,
		ticketIssuer: issuer,
		ticketTTL:    ttl,
	}
}

// Issue signs a rejoin ticket binding one seat to one room.
func (s *TicketService) Issue(roomID, playerID, name string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("ticket service is nil")
	}
	if s.ticketSecret == "" {
		return "", fmt.Errorf("ticket config is incomplete")
	}
	if roomID == "" || playerID == "" {
		return "", fmt.Errorf("room and player are required")
	}

	claims := jwt.MapClaims{
		"iss":    s.ticketIssuer,
		"sub":    playerID,
		"exp":    time.Now().Add(s.ticketTTL).Unix(),
		"room":   roomID,
		"player": playerID,
		"name":   name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.ticketSecret))
}

// Verify parses a ticket and returns its claims. Expired or tampered tickets
// fail; callers fall back to a fresh join in that case.
func (s *TicketService) Verify(tokenString string) (TicketClaims, error) {
	if s == nil || s.ticketSecret == "" {
		return TicketClaims{}, fmt.Errorf("ticket config is incomplete")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.ticketSecret), nil
	})
	if err != nil {
		return TicketClaims{}, fmt.Errorf("invalid rejoin ticket: %w", err)
	}
	if !token.Valid {
		return TicketClaims{}, fmt.Errorf("invalid rejoin ticket")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return TicketClaims{}, fmt.Errorf("rejoin ticket claims are not map claims")
	}

	out := TicketClaims{}
	if v, ok := claims["room"].(string); ok {
		out.RoomID = v
	}
	if v, ok := claims["player"].(string); ok {
		out.PlayerID = v
	}
	if v, ok := claims["name"].(string); ok {
		out.Name = v
	}
	if out.RoomID == "" || out.PlayerID == "" {
		return TicketClaims{}, fmt.Errorf("rejoin ticket is missing claims")
	}
	return out, nil
}
