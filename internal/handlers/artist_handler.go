package handlers

import (
	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/middleware"
	"github.com/VoHoang203/VibeMelodyBE/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ArtistHandler struct {
	catalog       *services.CatalogService
	social        *services.SocialService
	subscriptions *services.SubscriptionService
}

func NewArtistHandler(catalog *services.CatalogService, social *services.SocialService, subscriptions *services.SubscriptionService) *ArtistHandler {
	return &ArtistHandler{catalog: catalog, social: social, subscriptions: subscriptions}
}

func (h *ArtistHandler) Check(c *fiber.Ctx) error {
	resp, err := h.subscriptions.CheckArtist(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ArtistHandler) Subscription(c *fiber.Ctx) error {
	resp, err := h.subscriptions.Subscription(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ArtistHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateArtistProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	resp, err := h.subscriptions.UpdateArtistProfile(c.UserContext(), middleware.CurrentUser(c).ID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ArtistHandler) Search(c *fiber.Ctx) error {
	artists, err := h.catalog.SearchArtists(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(artists)
}

func (h *ArtistHandler) Main(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "artistId")
	if !ok {
		return err
	}
	resp, err := h.catalog.ArtistMain(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ArtistHandler) Follow(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "artistId")
	if !ok {
		return err
	}
	resp, err := h.social.Follow(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ArtistHandler) Unfollow(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "artistId")
	if !ok {
		return err
	}
	resp, err := h.social.Unfollow(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ArtistHandler) FollowStatus(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "artistId")
	if !ok {
		return err
	}
	resp, err := h.social.FollowStatus(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
