package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/relaychat/relaychat-backend/internal/httpx"
)

// OriginAllowed rejects browser requests from origins outside
// ALLOWED_ORIGINS. It guards the websocket upgrade in particular, where the
// browser enforces no same-origin policy of its own. An empty allowlist
// disables the check.
func OriginAllowed() fiber.Handler {
	allowed := splitCSV(strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")))
	return func(c *fiber.Ctx) error {
		origin := strings.TrimSpace(c.Get("Origin"))
		if origin == "" || len(allowed) == 0 {
			return c.Next()
		}
		for _, a := range allowed {
			if a == origin {
				return c.Next()
			}
		}
		return httpx.Forbidden(c, "forbidden_origin", "Origin not allowed")
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
