package handlers

import (
	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/middleware"
	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/services"
	"github.com/VoHoang203/VibeMelodyBE/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SongHandler struct {
	catalog *services.CatalogService
	social  *services.SocialService
	media   media
}

func NewSongHandler(catalog *services.CatalogService, social *services.SocialService, uploader storage.Uploader) *SongHandler {
	return &SongHandler{catalog: catalog, social: social, media: media{uploader: uploader}}
}

func (h *SongHandler) Home(c *fiber.Ctx) error {
	resp, err := h.catalog.Home(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// List serves GET /songs?artistId=&unassigned=.
func (h *SongHandler) List(c *fiber.Ctx) error {
	artistID, err := uuid.Parse(c.Query("artistId"))
	if err != nil {
		return badRequest(c, "artistId is required")
	}
	songs, err := h.catalog.ListArtistSongs(c.UserContext(), middleware.CurrentUser(c), artistID, c.QueryBool("unassigned"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(songs)
}

func (h *SongHandler) Get(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "songId")
	if !ok {
		return err
	}
	song, err := h.catalog.GetSong(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(song)
}

func (h *SongHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSongRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	audioURL, err := h.media.upload(c, fieldAudioFile, storage.FolderAudio)
	if err != nil {
		return respondError(c, err)
	}
	if audioURL != "" {
		req.AudioURL = audioURL
	}
	imageURL, err := h.media.upload(c, fieldImageFile, storage.FolderImages)
	if err != nil {
		return respondError(c, err)
	}
	if imageURL != "" {
		req.ImageURL = imageURL
	}

	song, err := h.catalog.CreateSong(c.UserContext(), middleware.CurrentUser(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(song)
}

func (h *SongHandler) Update(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "songId")
	if !ok {
		return err
	}
	var req dto.UpdateSongRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	imageURL, err := h.media.upload(c, fieldImageFile, storage.FolderImages)
	if err != nil {
		return respondError(c, err)
	}
	if imageURL != "" {
		req.ImageURL = &imageURL
	}

	song, err := h.catalog.UpdateSong(c.UserContext(), middleware.CurrentUser(c), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(song)
}

func (h *SongHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "songId")
	if !ok {
		return err
	}
	if err := h.catalog.DeleteSong(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Song deleted"})
}

func (h *SongHandler) Like(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "songId")
	if !ok {
		return err
	}
	resp, err := h.social.LikeSong(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *SongHandler) Unlike(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "songId")
	if !ok {
		return err
	}
	resp, err := h.social.UnlikeSong(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *SongHandler) LikeStatus(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "songId")
	if !ok {
		return err
	}
	resp, err := h.social.LikeStatus(c.UserContext(), middleware.CurrentUser(c), models.TargetSong, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *SongHandler) LikedSongs(c *fiber.Ctx) error {
	songs, err := h.social.LikedSongs(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(songs)
}
