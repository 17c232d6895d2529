package routes

import (
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/config"
	"github.com/VoHoang203/VibeMelodyBE/internal/handlers"
	"github.com/VoHoang203/VibeMelodyBE/internal/middleware"
	"github.com/VoHoang203/VibeMelodyBE/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	Artist       *handlers.ArtistHandler
	Song         *handlers.SongHandler
	Album        *handlers.AlbumHandler
	Comment      *handlers.CommentHandler
	Notification *handlers.NotificationHandler
	Chat         *handlers.ChatHandler
	Payment      *handlers.PaymentHandler
}

func perIP(maxRequests int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               maxRequests,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}

func Setup(app *fiber.App, cfg *config.Config, authService *services.AuthService, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(perIP(120))

	protected := middleware.JWTProtected(authService, cfg)
	optional := middleware.OptionalUser(authService)
	publisher := middleware.ActiveArtistRequired()

	api.Get("/health", h.Health.Check)

	// Auth: stricter 10 req/min per IP on credential endpoints
	authLimit := perIP(10)
	auth := api.Group("/auth")
	auth.Post("/signup", authLimit, h.Auth.Signup)
	auth.Post("/login", authLimit, h.Auth.Login)
	auth.Post("/refresh-token", authLimit, h.Auth.Refresh)
	auth.Post("/logout", protected, h.Auth.Logout)
	auth.Get("/profile", protected, h.Auth.Profile)
	auth.Patch("/profile", protected, h.Auth.UpdateProfile)
	auth.Post("/change-password", protected, authLimit, h.Auth.ChangePassword)

	// Current artist
	artist := api.Group("/artist", protected)
	artist.Get("/check", h.Artist.Check)
	artist.Get("/subscription", h.Artist.Subscription)
	artist.Patch("/profile", h.Artist.UpdateProfile)

	// Artist discovery and follows
	artists := api.Group("/artists")
	artists.Get("/search", h.Artist.Search)
	artists.Get("/:artistId/main", h.Artist.Main)
	artists.Get("/:artistId/follow-status", protected, h.Artist.FollowStatus)
	artists.Post("/:artistId/follow", protected, h.Artist.Follow)
	artists.Delete("/:artistId/follow", protected, h.Artist.Unfollow)

	api.Get("/main/home", h.Song.Home)
	api.Get("/me/liked-songs", protected, h.Song.LikedSongs)

	// Songs
	songs := api.Group("/songs")
	songs.Get("/", optional, h.Song.List)
	songs.Post("/", protected, publisher, h.Song.Create)
	songs.Get("/:songId", optional, h.Song.Get)
	songs.Patch("/:songId", protected, h.Song.Update)
	songs.Delete("/:songId", protected, h.Song.Delete)
	songs.Post("/:songId/like", protected, h.Song.Like)
	songs.Delete("/:songId/like", protected, h.Song.Unlike)
	songs.Get("/:songId/like-status", protected, h.Song.LikeStatus)
	songs.Get("/:songId/comments", h.Comment.List)
	songs.Post("/:songId/comments", protected, h.Comment.Create)

	// Albums
	albums := api.Group("/albums")
	albums.Get("/", optional, h.Album.List)
	albums.Post("/", protected, publisher, h.Album.Create)
	albums.Get("/:albumId", optional, h.Album.Get)
	albums.Get("/:albumId/main", h.Album.Main)
	albums.Put("/:albumId", protected, h.Album.Update)
	albums.Delete("/:albumId", protected, h.Album.Delete)
	albums.Patch("/:albumId/hide", protected, h.Album.Hide)
	albums.Post("/:albumId/like", protected, h.Album.Like)
	albums.Delete("/:albumId/like", protected, h.Album.Unlike)
	albums.Get("/:albumId/like-status", protected, h.Album.LikeStatus)

	api.Get("/notifications", protected, h.Notification.List)

	// AI assistant and direct chat
	api.Get("/ai/messages", protected, h.Chat.AIMessages)
	api.Post("/ai/chat", protected, h.Chat.AIChat)
	api.Get("/chat/users", protected, h.Chat.Users)
	api.Get("/chat/messages/:userId", protected, h.Chat.Messages)

	// Payments: webhook and status are public, the provider calls them
	payos := api.Group("/payos")
	payos.Post("/create-payment", protected, h.Payment.CreatePayment)
	payos.Get("/status/:orderCode", h.Payment.Status)
	payos.Post("/webhook", h.Payment.Webhook)
}
