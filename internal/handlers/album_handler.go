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

type AlbumHandler struct {
	catalog *services.CatalogService
	social  *services.SocialService
	media   media
}

func NewAlbumHandler(catalog *services.CatalogService, social *services.SocialService, uploader storage.Uploader) *AlbumHandler {
	return &AlbumHandler{catalog: catalog, social: social, media: media{uploader: uploader}}
}

// List serves GET /albums?artistId=&visibleOnly=&q=.
func (h *AlbumHandler) List(c *fiber.Ctx) error {
	var artistID *uuid.UUID
	if raw := c.Query("artistId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "Invalid artistId")
		}
		artistID = &id
	}
	albums, err := h.catalog.ListAlbums(c.UserContext(), middleware.CurrentUser(c), artistID, c.QueryBool("visibleOnly"), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(albums)
}

func (h *AlbumHandler) Get(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "albumId")
	if !ok {
		return err
	}
	album, err := h.catalog.GetAlbum(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(album)
}

func (h *AlbumHandler) Main(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "albumId")
	if !ok {
		return err
	}
	resp, err := h.catalog.AlbumMain(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AlbumHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAlbumRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if isMultipart(c) {
		ids, present, err := formSongIDs(c)
		if err != nil {
			return badRequest(c, "songIds must be a JSON array")
		}
		if present {
			req.Songs = ids
		}
	}
	imageURL, err := h.media.upload(c, fieldImageFile, storage.FolderImages)
	if err != nil {
		return respondError(c, err)
	}
	if imageURL != "" {
		req.ImageURL = imageURL
	}

	album, err := h.catalog.CreateAlbum(c.UserContext(), middleware.CurrentUser(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(album)
}

func (h *AlbumHandler) Update(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "albumId")
	if !ok {
		return err
	}
	var req dto.UpdateAlbumRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if isMultipart(c) {
		ids, present, err := formSongIDs(c)
		if err != nil {
			return badRequest(c, "songIds must be a JSON array")
		}
		if present {
			req.Songs = &ids
		}
	}
	imageURL, err := h.media.upload(c, fieldImageFile, storage.FolderImages)
	if err != nil {
		return respondError(c, err)
	}
	if imageURL != "" {
		req.ImageURL = &imageURL
	}

	album, err := h.catalog.UpdateAlbum(c.UserContext(), middleware.CurrentUser(c), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(album)
}

func (h *AlbumHandler) Hide(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "albumId")
	if !ok {
		return err
	}
	var req dto.HideAlbumRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	resp, err := h.catalog.SetAlbumVisibility(c.UserContext(), middleware.CurrentUser(c), id, req.IsHidden)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AlbumHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "albumId")
	if !ok {
		return err
	}
	if err := h.catalog.DeleteAlbum(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Album deleted"})
}

func (h *AlbumHandler) Like(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "albumId")
	if !ok {
		return err
	}
	resp, err := h.social.LikeAlbum(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AlbumHandler) Unlike(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "albumId")
	if !ok {
		return err
	}
	resp, err := h.social.UnlikeAlbum(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AlbumHandler) LikeStatus(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "albumId")
	if !ok {
		return err
	}
	resp, err := h.social.LikeStatus(c.UserContext(), middleware.CurrentUser(c), models.TargetAlbum, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
