package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// PayloadInt parses callback payload as int.
func PayloadInt(c tele.Context) (int, error) {
	p := CallbackPayload(c)
	return strconv.Atoi(p)
}

// PayloadString returns the trimmed callback payload.
func PayloadString(c tele.Context) string {
	return strings.TrimSpace(CallbackPayload(c))
}
