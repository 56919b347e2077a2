package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateBookingID creates a short booking reference.
// Format: BK + 6 uppercase hex chars, e.g. BK3FA1C9. The keypad hardware
// shows it on a 16x2 LCD, so it has to stay short.
func GenerateBookingID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("BK%s", strings.ToUpper(hex[:6]))
}
