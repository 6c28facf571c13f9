package middleware

import (
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORSConfig allows credentials so the session cookie crosses origins.
func CORSConfig(origins string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "POST,GET,PATCH,DELETE,PUT,OPTIONS",
		AllowHeaders:     "Content-Type,Cache-Control,Pragma",
		AllowCredentials: true,
	}
}
